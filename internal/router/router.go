package router

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pet-clinic-booking/docs"
	"pet-clinic-booking/internal/adapters/ai/gemini"
	"pet-clinic-booking/internal/adapters/auth/tokens"
	kafkanotify "pet-clinic-booking/internal/adapters/notify/kafka"
	"pet-clinic-booking/internal/adapters/places/kakao"
	mem "pet-clinic-booking/internal/adapters/storage/memory"
	pg "pet-clinic-booking/internal/adapters/storage/postgres"
	"pet-clinic-booking/internal/adapters/triage"
	"pet-clinic-booking/internal/config"
	"pet-clinic-booking/internal/domain/bookings"
	"pet-clinic-booking/internal/domain/clinics"
	"pet-clinic-booking/internal/domain/dailylogs"
	"pet-clinic-booking/internal/domain/documents"
	"pet-clinic-booking/internal/domain/hospitals"
	"pet-clinic-booking/internal/domain/notifications"
	"pet-clinic-booking/internal/domain/patients"
	"pet-clinic-booking/internal/domain/pets"
	"pet-clinic-booking/internal/domain/results"
	"pet-clinic-booking/internal/domain/treatment"
	"pet-clinic-booking/internal/domain/users"
	"pet-clinic-booking/internal/livesync"
	"pet-clinic-booking/internal/middleware"
	"pet-clinic-booking/internal/platform/blob"
	"pet-clinic-booking/internal/platform/logger"
	"pet-clinic-booking/internal/platform/metrics"
	"pet-clinic-booking/internal/ports/auth"
	"pet-clinic-booking/internal/ports/places"
	"pet-clinic-booking/internal/ports/store"
)

type Options struct {
	Config config.Config
	Log    logger.Logger

	// Opcional: override del verifier (tests). Si es nil y hay JWT_SECRET,
	// se arma el verifier HS256; sin secret queda modo dev (X-Debug-User-ID).
	AuthVerifier auth.AuthVerifier

	// Opcional: si viene, usa Postgres. Si no y hay DB_DSN, la abre; si no,
	// repos in-memory.
	DB *sql.DB
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}
	m := metrics.New()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	verifier := opts.AuthVerifier
	if verifier == nil && cfg.JWTSecret != "" {
		verifier = tokens.NewVerifier(cfg.JWTSecret)
	}
	r.Use(middleware.AuthContext(verifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		bookingRepo  bookings.Repository
		resultRepo   results.Repository
		patientRepo  patients.Repository
		clinicRepo   clinics.Repository
		petRepo      pets.Repository
		userRepo     users.Repository
		hospitalRepo hospitals.Repository
		notifRepo    notifications.Repository
		logRepo      dailylogs.Repository
		docRepo      documents.Repository
		runner       store.Runner
		source       livesync.Source
	)

	db := opts.DB
	if db == nil && cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres open failed, falling back to in-memory", map[string]any{"err": err.Error()})
		} else {
			db = opened
		}
	}

	if db != nil {
		pgBookings := pg.NewBookingsRepo(db, cfg.SyncPollInterval)
		bookingRepo = pgBookings
		source = pgBookings
		resultRepo = pg.NewResultsRepo(db)
		patientRepo = pg.NewPatientsRepo(db)
		clinicRepo = pg.NewClinicsRepo(db)
		petRepo = pg.NewPetsRepo(db)
		userRepo = pg.NewUsersRepo(db)
		hospitalRepo = pg.NewHospitalsRepo(db)
		notifRepo = pg.NewNotificationsRepo(db)
		logRepo = pg.NewDailyLogsRepo(db)
		docRepo = pg.NewDocumentsRepo(db)
		runner = pg.NewRunner(db)
	} else {
		memBookings := mem.NewBookingRepository()
		bookingRepo = memBookings
		source = memBookings
		resultRepo = mem.NewResultRepository()
		patientRepo = mem.NewPatientRepository()
		clinicRepo = mem.NewClinicRepository()
		petRepo = mem.NewPetRepository()
		userRepo = mem.NewUserRepository()
		hospitalRepo = mem.NewHospitalRepository()
		notifRepo = mem.NewNotificationRepository()
		logRepo = mem.NewDailyLogRepository()
		docRepo = mem.NewDocumentRepository()
		runner = mem.NewRunner()
	}

	blobStore, err := blob.Open(context.Background(), cfg)
	if err != nil {
		log.Error("blob driver open failed, falling back to memory", map[string]any{"driver": cfg.BlobDriver, "err": err.Error()})
		blobStore = blob.NewMemory()
	}

	// Adapters externos, todos opcionales según config.
	var triageScorer bookings.TriageScorer
	var triageAnswerer bookings.QuestionAnswerer
	if cfg.TriageBaseURL != "" {
		tc, terr := triage.NewClient(cfg.TriageBaseURL, cfg.TriageTimeout, log)
		if terr != nil {
			log.Error("triage client disabled", map[string]any{"err": terr.Error()})
		} else {
			triageScorer = tc
			triageAnswerer = tc
		}
	}

	var parser documents.Parser
	if cfg.GeminiAPIKey != "" {
		parser = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	var searcher places.Searcher
	if cfg.KakaoRESTKey != "" {
		searcher = kakao.NewClient(cfg.KakaoRESTKey)
	}

	var publisher notifications.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafkanotify.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	clinicsSvc := clinics.NewService(clinicRepo, bookingRepo, logRepo, log)
	bookingsSvc := bookings.NewService(bookingRepo, petsSvc, triageScorer, log)
	hospitalsSvc := hospitals.NewService(hospitalRepo, searcher, log)
	docsSvc := documents.NewService(docRepo, blobStore, parser, log)

	treatmentSvc := treatment.NewService(treatment.Deps{
		Bookings:  bookingRepo,
		Results:   resultRepo,
		Patients:  patientRepo,
		Logs:      logRepo,
		Notifs:    notifRepo,
		Staff:     clinicsSvc,
		Runner:    runner,
		Publisher: publisher,
		Metrics:   m,
		Log:       log,
	})

	enricher := livesync.NewEnricher(petRepo, userRepo, resultRepo, m, cfg.EnrichLimit)
	synchronizer := livesync.NewSynchronizer(source, bookingRepo, enricher, m, log)

	// Rutas por módulo
	bookings.RegisterRoutes(r, bookingsSvc, clinicsSvc)
	if triageAnswerer != nil {
		bookings.RegisterTriageRoutes(r, triageAnswerer)
	}
	treatment.RegisterRoutes(r, treatmentSvc)
	livesync.RegisterRoutes(r, synchronizer, clinicsSvc, clinicsSvc)
	clinics.RegisterRoutes(r, clinicsSvc)
	dailylogs.RegisterRoutes(r, logRepo, clinicsSvc)
	hospitals.RegisterRoutes(r, hospitalsSvc)
	pets.RegisterRoutes(r, petsSvc)
	users.RegisterRoutes(r, userRepo)
	notifications.RegisterRoutes(r, notifRepo)
	documents.RegisterRoutes(r, docsSvc)

	return r
}
