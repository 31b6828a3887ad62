package livesync

import (
	"sort"

	"pet-clinic-booking/internal/domain/bookings"
)

// Row es una fila del view: el booking más el flag de si todavía es un
// update optimista sin confirmar.
type Row struct {
	Booking    bookings.Booking
	Optimistic bool
}

type entry struct {
	b          bookings.Booking
	optimistic bool
}

// Reducer mantiene el estado del view de un día mezclando dos flujos por
// Version: snapshots confirmados del Source y intents optimistas locales.
// Regla única: gana la Version más alta; un intent stale se descarta y un
// snapshot nunca pisa un intent que todavía va adelante.
//
// No es thread-safe; el caller serializa los apply.
type Reducer struct {
	entries map[string]entry
}

func NewReducer() *Reducer {
	return &Reducer{entries: map[string]entry{}}
}

// ApplySnapshot reemplaza el estado confirmado por el snapshot completo.
// Overlays optimistas con Version mayor a la confirmada sobreviven hasta
// que el snapshot los alcance; los que el snapshot ya igualó o superó se
// consolidan como confirmados.
func (r *Reducer) ApplySnapshot(list []bookings.Booking) {
	next := make(map[string]entry, len(list))

	for _, b := range list {
		if e, ok := r.entries[b.ID]; ok && e.optimistic && e.b.Version > b.Version {
			next[b.ID] = e
			continue
		}
		next[b.ID] = entry{b: b}
	}

	// Intents de bookings que el snapshot todavía no trae (creación en vuelo).
	for id, e := range r.entries {
		if !e.optimistic {
			continue
		}
		if _, ok := next[id]; !ok {
			next[id] = e
		}
	}

	r.entries = next
}

// ApplyIntent overlay de un update optimista. Devuelve false si era stale
// (la Version guardada ya es igual o mayor) y no cambió nada.
func (r *Reducer) ApplyIntent(b bookings.Booking) bool {
	if e, ok := r.entries[b.ID]; ok && e.b.Version >= b.Version {
		return false
	}
	r.entries[b.ID] = entry{b: b, optimistic: true}
	return true
}

// View devuelve las filas ordenadas por hora asc, desempate por id para
// salida estable.
func (r *Reducer) View() []Row {
	out := make([]Row, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Row{Booking: e.b, Optimistic: e.optimistic})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Booking.Time != out[j].Booking.Time {
			return out[i].Booking.Time < out[j].Booking.Time
		}
		return out[i].Booking.ID < out[j].Booking.ID
	})
	return out
}
