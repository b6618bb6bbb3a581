package notify

import (
	"sync"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// defaultBuffer capacidad del canal de cada suscriptor.
const defaultBuffer = 64

// Broadcaster distribuye señales de reorden a suscriptores vía canales.
// Publish nunca bloquea al emisor: si el buffer de un suscriptor está lleno,
// la señal se descarta para ese suscriptor y se deja registro. El monitor
// re-emite mientras la condición persista, así que una señal descartada se
// recupera en la siguiente evaluación.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan entity.ReorderSignal
	nextID int
	closed bool
	logg   *logger.Logger
}

// NewBroadcaster construye el distribuidor de señales.
func NewBroadcaster(logg *logger.Logger) *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan entity.ReorderSignal), logg: logg}
}

// Publish envía la señal a todos los suscriptores sin bloquear.
func (b *Broadcaster) Publish(signal entity.ReorderSignal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- signal:
		default:
			b.logg.Warn().
				Int("subscriber", id).
				Str("item_id", signal.ItemID).
				Str("warehouse_id", signal.WarehouseID).
				Msg("suscriptor lento: señal de reorden descartada")
		}
	}
}

// Subscribe devuelve un canal de señales (secuencia infinita, no reiniciable)
// y la función para cancelar la suscripción.
func (b *Broadcaster) Subscribe() (<-chan entity.ReorderSignal, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan entity.ReorderSignal, defaultBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close cierra todos los canales; las publicaciones posteriores se ignoran.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
