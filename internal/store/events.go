package store

import (
	"sync"

	"github.com/filmlot/sessiond/internal/domain"
)

// Broadcaster implementa el fan-out de eventos de auth a suscriptores.
// Thread-safe. Embebido por los adapters concretos.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]AuthCallback
}

// Subscribe registra un callback y retorna la función de cancelación.
func (b *Broadcaster) Subscribe(cb AuthCallback) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]AuthCallback)
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = cb
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Emit entrega el evento a todos los suscriptores registrados.
// La entrega es síncrona y en orden de registro no garantizado.
func (b *Broadcaster) Emit(event AuthEvent, session *domain.Session) {
	b.mu.Lock()
	cbs := make([]AuthCallback, 0, len(b.subs))
	for _, cb := range b.subs {
		cbs = append(cbs, cb)
	}
	b.mu.Unlock()

	for _, cb := range cbs {
		cb(event, session)
	}
}
