package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/notify"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func signal(itemID string, onHand int64) entity.ReorderSignal {
	return entity.ReorderSignal{
		ItemID:       itemID,
		WarehouseID:  "bodega-1",
		OnHand:       onHand,
		ReorderPoint: 5,
		At:           time.Now().UTC(),
	}
}

func TestBroadcaster_EntregaATodosLosSuscriptores(t *testing.T) {
	b := notify.NewBroadcaster(testLogger())
	defer b.Close()

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(signal("item-1", 3))

	for _, ch := range []<-chan entity.ReorderSignal{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, "item-1", got.ItemID)
			assert.Equal(t, int64(3), got.OnHand)
		case <-time.After(time.Second):
			t.Fatal("la señal nunca llegó al suscriptor")
		}
	}
}

func TestBroadcaster_PublishNoBloqueaConBufferLleno(t *testing.T) {
	b := notify.NewBroadcaster(testLogger())
	defer b.Close()

	ch, cancel := b.Subscribe()
	defer cancel()

	// Nadie consume: llenar el buffer y seguir publicando no debe bloquear.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			b.Publish(signal("item-1", int64(i)))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish bloqueó al emisor con el buffer lleno")
	}

	// El buffer conserva las primeras señales; las demás se descartaron.
	got := <-ch
	assert.Equal(t, int64(0), got.OnHand)
}

func TestBroadcaster_CancelCierraElCanal(t *testing.T) {
	b := notify.NewBroadcaster(testLogger())
	defer b.Close()

	ch, cancel := b.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open, "cancelar la suscripción cierra el canal")

	// Cancelar dos veces no debe entrar en pánico.
	cancel()

	// Publicar sin suscriptores sigue siendo seguro.
	b.Publish(signal("item-1", 1))
}

func TestBroadcaster_CloseDetieneTodo(t *testing.T) {
	b := notify.NewBroadcaster(testLogger())

	ch, cancel := b.Subscribe()
	defer cancel()

	b.Close()

	_, open := <-ch
	require.False(t, open)

	// Publicaciones y suscripciones posteriores no entran en pánico.
	b.Publish(signal("item-1", 2))
	late, _ := b.Subscribe()
	_, open = <-late
	assert.False(t, open, "suscribirse tras Close devuelve un canal cerrado")
}
