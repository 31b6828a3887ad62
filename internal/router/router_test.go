package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-clinic-booking/internal/config"
	"pet-clinic-booking/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Config{
		BlobDriver:  "memory",
		EnrichLimit: 4,
	}
	return httptest.NewServer(router.NewRouter(router.Options{Config: cfg}))
}

func TestHTTP_EndToEnd_BookingWorkflow(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	vetID := "vet-1"
	guardianID := "guardian-1"

	// 1) Vet crea la clínica (queda como staff admin)
	clinicID := createResource(t, ts.URL, "/clinics", vetID, map[string]any{
		"name":    "행복 동물병원",
		"address": "서울 강남구",
	})

	// 2) Guardián registra mascota y perfil
	petID := createResource(t, ts.URL, "/pets", guardianID, map[string]any{
		"name":    "초코",
		"species": "dog",
		"breed":   "poodle",
		"sex":     "male",
	})
	{
		st, body := doReq(t, ts.URL, "PUT", "/me", guardianID, map[string]any{
			"name":  "김보호",
			"phone": "010-1234-5678",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 put profile, got %d body=%s", st, string(body))
		}
	}

	// 3) Guardián reserva turno
	bookingID := createResource(t, ts.URL, "/bookings", guardianID, map[string]any{
		"clinic_id": clinicID,
		"pet_id":    petID,
		"date":      "2025-06-01",
		"time":      "09:00",
		"message":   "어제부터 구토를 해요",
	})

	// 4) El guardián no puede confirmar su propio turno
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/confirm", guardianID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 confirm by guardian, got %d", st)
		}
	}

	// 5) Staff confirma
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/confirm", vetID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 confirm, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "confirmed" {
			t.Fatalf("expected confirmed, got %q", resp.Status)
		}
	}

	// 6) Compartir sin tratamiento guardado => conflicto
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/share", vetID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 share without result, got %d", st)
		}
	}

	// 7) Staff guarda la nota SOAP
	{
		st, body := doReq(t, ts.URL, "PUT", "/bookings/"+bookingID+"/treatment", vetID, map[string]any{
			"main_diagnosis": "위장염",
			"subjective":     "구토 2회",
			"assessment":     "급성 위장염 의심",
			"plan":           "금식 12시간 후 유동식",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 save treatment, got %d body=%s", st, string(body))
		}
	}

	// 8) El guardián todavía no ve el resultado
	{
		st, _ := doReq(t, ts.URL, "GET", "/bookings/"+bookingID+"/result", guardianID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 result before share, got %d", st)
		}
	}

	// 9) Staff comparte: el turno queda completed y el resultado visible
	{
		st, body := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/share", vetID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 share, got %d body=%s", st, string(body))
		}
		var resp struct {
			SharedToGuardian bool `json:"shared_to_guardian"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.SharedToGuardian {
			t.Fatalf("expected shared_to_guardian=true body=%s", string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/bookings/"+bookingID, guardianID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get booking, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "completed" {
			t.Fatalf("expected completed after share, got %q", resp.Status)
		}
	}

	// 10) El guardián ve su historial compartido
	{
		st, body := doReq(t, ts.URL, "GET", "/me/records", guardianID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 my records, got %d body=%s", st, string(body))
		}
		var records []struct {
			MainDiagnosis string `json:"main_diagnosis"`
		}
		_ = json.Unmarshal(body, &records)
		if len(records) != 1 || records[0].MainDiagnosis != "위장염" {
			t.Fatalf("unexpected records body=%s", string(body))
		}
	}

	// 11) Cancelar un turno completed => conflicto
	{
		st, _ := doReq(t, ts.URL, "POST", "/bookings/"+bookingID+"/cancel", vetID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 cancel after complete, got %d", st)
		}
	}

	// 12) View del día para el staff, con joins y flags de resultado
	{
		st, body := doReq(t, ts.URL, "GET", "/clinics/"+clinicID+"/bookings?date=2025-06-01", vetID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 day view, got %d body=%s", st, string(body))
		}
		var view []struct {
			ID           string `json:"id"`
			Status       string `json:"status"`
			PetName      string `json:"pet_name"`
			GuardianName string `json:"guardian_name"`
			HasResult    bool   `json:"has_result"`
			ResultShared bool   `json:"result_shared"`
		}
		_ = json.Unmarshal(body, &view)
		if len(view) != 1 {
			t.Fatalf("expected 1 row in day view body=%s", string(body))
		}
		row := view[0]
		if row.ID != bookingID || row.Status != "completed" || !row.HasResult || !row.ResultShared {
			t.Fatalf("unexpected day view row: %+v", row)
		}
		if row.PetName != "초코" || row.GuardianName != "김보호" {
			t.Fatalf("enrichment missing in day view: %+v", row)
		}
	}

	// 13) El guardián no puede ver el dashboard de la clínica
	{
		st, _ := doReq(t, ts.URL, "GET", "/clinics/"+clinicID+"/bookings?date=2025-06-01", guardianID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 day view for guardian, got %d", st)
		}
	}

	// 14) Las notificaciones del flujo quedaron encoladas para el guardián
	{
		st, body := doReq(t, ts.URL, "GET", "/me/notifications", guardianID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 notifications, got %d body=%s", st, string(body))
		}
		var ns []struct {
			Kind string `json:"kind"`
		}
		_ = json.Unmarshal(body, &ns)
		if len(ns) != 2 { // confirmed + result_shared
			t.Fatalf("expected 2 notifications, got %d body=%s", len(ns), string(body))
		}
	}
}

func TestHTTP_LegacyBackfillBringsOldBookingsIntoView(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	vetID := "vet-1"
	guardianID := "guardian-1"

	clinicID := createResource(t, ts.URL, "/clinics", vetID, map[string]any{
		"name": "행복 동물병원",
	})
	petID := createResource(t, ts.URL, "/pets", guardianID, map[string]any{
		"name":    "나비",
		"species": "cat",
	})

	// Booking legacy: solo nombre de clínica, sin id.
	bookingID := createResource(t, ts.URL, "/bookings", guardianID, map[string]any{
		"clinic_name": "행복 동물병원",
		"pet_id":      petID,
		"date":        "2025-06-02",
		"time":        "10:30",
	})

	// El view por id canónico todavía no lo trae.
	{
		st, body := doReq(t, ts.URL, "GET", "/clinics/"+clinicID+"/bookings?date=2025-06-02", vetID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 day view, got %d", st)
		}
		var view []any
		_ = json.Unmarshal(body, &view)
		if len(view) != 0 {
			t.Fatalf("legacy booking visible before backfill body=%s", string(body))
		}
	}

	// El admin migra los legacy al id canónico.
	{
		st, body := doReq(t, ts.URL, "POST", "/clinics/"+clinicID+"/bookings/backfill", vetID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 backfill, got %d body=%s", st, string(body))
		}
		var resp struct {
			Migrated int `json:"migrated"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Migrated != 1 {
			t.Fatalf("expected 1 migrated, got %d", resp.Migrated)
		}
	}

	// Ahora sí aparece en la suscripción única por clave canónica.
	{
		st, body := doReq(t, ts.URL, "GET", "/clinics/"+clinicID+"/bookings?date=2025-06-02", vetID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 day view, got %d", st)
		}
		var view []struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &view)
		if len(view) != 1 || view[0].ID != bookingID {
			t.Fatalf("expected migrated booking in view body=%s", string(body))
		}
	}

	// Backfill repetido es no-op.
	{
		st, body := doReq(t, ts.URL, "POST", "/clinics/"+clinicID+"/bookings/backfill", vetID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 second backfill, got %d", st)
		}
		var resp struct {
			Migrated int `json:"migrated"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Migrated != 0 {
			t.Fatalf("expected 0 migrated on repeat, got %d", resp.Migrated)
		}
	}
}

func TestHTTP_NearbyHospitalsSortedByDistance(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	userID := "guardian-1"

	createResource(t, ts.URL, "/hospitals", userID, map[string]any{
		"name": "먼 병원", "lat": 37.4916, "lng": 127.0076,
	})
	createResource(t, ts.URL, "/hospitals", userID, map[string]any{
		"name": "가까운 병원", "lat": 37.5012, "lng": 127.0396,
	})

	st, body := doReq(t, ts.URL, "GET", "/hospitals/nearby?lat=37.4979&lng=127.0276", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 nearby, got %d body=%s", st, string(body))
	}

	var out []struct {
		Name       string  `json:"name"`
		DistanceKm float64 `json:"distance_km"`
	}
	_ = json.Unmarshal(body, &out)
	if len(out) != 2 {
		t.Fatalf("expected 2 hospitals, got %d", len(out))
	}
	if out[0].Name != "가까운 병원" || out[0].DistanceKm >= out[1].DistanceKm {
		t.Fatalf("nearby not sorted by distance: %+v", out)
	}
}

func createResource(t *testing.T, baseURL, path, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create %s, got %d body=%s", path, st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create %s: missing id body=%s", path, string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
