package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	itemX       = "00000000-0000-0000-0000-00000000000a" // stock estricto
	itemY       = "00000000-0000-0000-0000-00000000000b" // permite negativo
	warehouse1  = "00000000-0000-0000-0000-000000000101"
	warehouse2  = "00000000-0000-0000-0000-000000000102"
	warehouse3  = "00000000-0000-0000-0000-000000000103" // inactiva
	testActor   = "tester@example.com"
	unknownUUID = "00000000-0000-0000-0000-0000000000ff"
)

// captureSink acumula las señales de reorden emitidas por el monitor.
type captureSink struct {
	mu      sync.Mutex
	signals []entity.ReorderSignal
}

func (s *captureSink) Publish(signal entity.ReorderSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, signal)
}

func (s *captureSink) All() []entity.ReorderSignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ReorderSignal, len(s.signals))
	copy(out, s.signals)
	return out
}

// kardexFixture arma el núcleo completo sobre almacenes en memoria:
// kardex, proyector, monitor con sink de captura y coordinador.
type kardexFixture struct {
	log         *memory.MovementLog
	projector   *ledger.Projector
	coordinator *ledger.Coordinator
	warehouses  *memory.WarehouseCatalog
	sink        *captureSink
}

func newKardexFixture(t *testing.T) *kardexFixture {
	t.Helper()
	logg := logger.New(logger.Config{Env: "development", Level: "error"})

	items := memory.NewItemCatalog(
		&entity.Item{ID: itemX, SKU: "SKU-X", Name: "Ítem X", UnitOfMeasure: "unidad",
			MinStockLevel: 0, ReorderPoint: 5, Active: true},
		&entity.Item{ID: itemY, SKU: "SKU-Y", Name: "Ítem Y", UnitOfMeasure: "unidad",
			AllowNegativeStock: true, Active: true},
	)
	warehouses := memory.NewWarehouseCatalog(
		&entity.Warehouse{ID: warehouse1, Code: "BOD-1", Name: "Bodega principal", Active: true},
		&entity.Warehouse{ID: warehouse2, Code: "BOD-2", Name: "Bodega norte", Active: true},
		&entity.Warehouse{ID: warehouse3, Code: "BOD-3", Name: "Bodega cerrada", Active: false},
	)

	log := memory.NewMovementLog()
	projector := ledger.NewProjector(log, logg)
	sink := &captureSink{}
	monitor := ledger.NewMonitor(items, projector, sink, logg)
	projector.SetObserver(monitor)
	coordinator := ledger.NewCoordinator(log, projector, items, warehouses, logg)

	return &kardexFixture{
		log:         log,
		projector:   projector,
		coordinator: coordinator,
		warehouses:  warehouses,
		sink:        sink,
	}
}

// receive registra una entrada y deja el balance listo para el escenario.
func (f *kardexFixture) receive(t *testing.T, itemID, warehouseID string, qty int64) {
	t.Helper()
	_, err := f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type:        entity.MovementTypeReceipt,
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		Actor:       testActor,
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos simples
// ──────────────────────────────────────────────────────────────────────────────

func TestPostMovement_EntradaAumentaBalance(t *testing.T) {
	f := newKardexFixture(t)

	committed, err := f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type:        entity.MovementTypeReceipt,
		ItemID:      itemX,
		WarehouseID: warehouse1,
		Quantity:    10,
		Reference:   "OC-001",
		Actor:       testActor,
	})
	require.NoError(t, err)
	require.NotNil(t, committed)

	assert.Equal(t, int64(1), committed.Sequence, "el primer movimiento recibe secuencia 1")
	assert.Equal(t, int64(10), committed.QuantityDelta)
	assert.Equal(t, int64(10), f.coordinator.GetBalance(itemX, warehouse1))
}

func TestPostMovement_DespachoDescuentaBalance(t *testing.T) {
	f := newKardexFixture(t)
	f.receive(t, itemX, warehouse1, 10)

	committed, err := f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type:        entity.MovementTypeShipment,
		ItemID:      itemX,
		WarehouseID: warehouse1,
		Quantity:    4,
		Actor:       testActor,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-4), committed.QuantityDelta, "el tipo determina el signo del delta")
	assert.Equal(t, int64(6), f.coordinator.GetBalance(itemX, warehouse1))
}

func TestPostMovement_TiposDeTrasladoRechazados(t *testing.T) {
	f := newKardexFixture(t)

	for _, typ := range []string{entity.MovementTypeTransferOut, entity.MovementTypeTransferIn} {
		_, err := f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
			Type:        typ,
			ItemID:      itemX,
			WarehouseID: warehouse1,
			Quantity:    1,
			Actor:       testActor,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidMovement, "los traslados solo se crean con Transfer: %s", typ)
	}
}

func TestPostMovement_AjusteSinMotivoInvalido(t *testing.T) {
	f := newKardexFixture(t)
	f.receive(t, itemX, warehouse1, 10)

	_, err := f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type:        entity.MovementTypeAdjustmentDecrease,
		ItemID:      itemX,
		WarehouseID: warehouse1,
		Quantity:    2,
		Actor:       testActor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)

	_, err = f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type:        entity.MovementTypeAdjustmentDecrease,
		ItemID:      itemX,
		WarehouseID: warehouse1,
		Quantity:    2,
		Reason:      "merma por daño",
		Actor:       testActor,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(8), f.coordinator.GetBalance(itemX, warehouse1))
}

func TestPostMovement_ReferenciasDesconocidas(t *testing.T) {
	f := newKardexFixture(t)

	_, err := f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type:        entity.MovementTypeReceipt,
		ItemID:      unknownUUID,
		WarehouseID: warehouse1,
		Quantity:    1,
		Actor:       testActor,
	})
	assert.ErrorIs(t, err, domain.ErrReferenceIntegrity, "ítem desconocido")

	_, err = f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type:        entity.MovementTypeReceipt,
		ItemID:      itemX,
		WarehouseID: unknownUUID,
		Quantity:    1,
		Actor:       testActor,
	})
	assert.ErrorIs(t, err, domain.ErrReferenceIntegrity, "bodega desconocida")

	_, err = f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type:        entity.MovementTypeReceipt,
		ItemID:      itemX,
		WarehouseID: warehouse3,
		Quantity:    1,
		Actor:       testActor,
	})
	assert.ErrorIs(t, err, domain.ErrReferenceIntegrity, "bodega inactiva")
}

func TestPostMovement_ReintentoIdempotente(t *testing.T) {
	f := newKardexFixture(t)

	cmd := ledger.PostMovementCommand{
		MovementID:  "11111111-1111-1111-1111-111111111111",
		Type:        entity.MovementTypeReceipt,
		ItemID:      itemX,
		WarehouseID: warehouse1,
		Quantity:    10,
		Actor:       testActor,
	}
	first, err := f.coordinator.PostMovement(context.Background(), cmd)
	require.NoError(t, err)

	// Reintento at-least-once con el mismo movement_id: devuelve el resultado
	// original y no vuelve a afectar el balance.
	second, err := f.coordinator.PostMovement(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, first.Sequence, second.Sequence)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(10), f.coordinator.GetBalance(itemX, warehouse1))

	movements, err := f.log.ReadSince(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Len(t, movements, 1, "el kardex contiene un único movimiento")
}

func TestPostMovement_NegativoPermitidoPorBandera(t *testing.T) {
	f := newKardexFixture(t)

	// Ítem Y permite backorder: el despacho sin stock queda en negativo.
	_, err := f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type:        entity.MovementTypeShipment,
		ItemID:      itemY,
		WarehouseID: warehouse1,
		Quantity:    3,
		Actor:       testActor,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), f.coordinator.GetBalance(itemY, warehouse1))
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario de reorden (balance 10, punto de reorden 5)
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenarioReorden_DespachosYSenales(t *testing.T) {
	f := newKardexFixture(t)
	f.receive(t, itemX, warehouse1, 15)

	// Dejar el balance en 10 con un despacho previo (15 > 5 no emite señal).
	_, err := f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type: entity.MovementTypeShipment, ItemID: itemX, WarehouseID: warehouse1,
		Quantity: 5, Actor: testActor,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), f.coordinator.GetBalance(itemX, warehouse1))
	require.Empty(t, f.sink.All(), "sin señales mientras el balance supera el punto de reorden")

	// Despacho de 5 → balance 5 == punto de reorden → señal.
	_, err = f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type: entity.MovementTypeShipment, ItemID: itemX, WarehouseID: warehouse1,
		Quantity: 5, Actor: testActor,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.coordinator.GetBalance(itemX, warehouse1))

	signals := f.sink.All()
	require.Len(t, signals, 1)
	assert.Equal(t, itemX, signals[0].ItemID)
	assert.Equal(t, warehouse1, signals[0].WarehouseID)
	assert.Equal(t, int64(5), signals[0].OnHand)
	assert.Equal(t, int64(5), signals[0].ReorderPoint)

	// Entrada de 20 → balance 25, sin señal nueva.
	f.receive(t, itemX, warehouse1, 20)
	assert.Equal(t, int64(25), f.coordinator.GetBalance(itemX, warehouse1))
	assert.Len(t, f.sink.All(), 1)
}

func TestEscenarioReorden_NivelMinimoBloqueaDespacho(t *testing.T) {
	f := newKardexFixture(t)

	// Ítem con nivel mínimo 5: ningún despacho puede dejar el balance debajo de 5.
	items := memory.NewItemCatalog(&entity.Item{
		ID: itemX, SKU: "SKU-X", Name: "Ítem X", UnitOfMeasure: "unidad",
		MinStockLevel: 5, ReorderPoint: 5, Active: true,
	})
	logg := logger.New(logger.Config{Env: "development", Level: "error"})
	sink := &captureSink{}
	projector := ledger.NewProjector(f.log, logg)
	monitor := ledger.NewMonitor(items, projector, sink, logg)
	projector.SetObserver(monitor)
	coordinator := ledger.NewCoordinator(f.log, projector, items, f.warehouses, logg)

	_, err := coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type: entity.MovementTypeReceipt, ItemID: itemX, WarehouseID: warehouse1,
		Quantity: 10, Actor: testActor,
	})
	require.NoError(t, err)

	// 10 - 6 = 4 < nivel mínimo 5 → rechazado, balance intacto.
	_, err = coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type: entity.MovementTypeShipment, ItemID: itemX, WarehouseID: warehouse1,
		Quantity: 6, Actor: testActor,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), coordinator.GetBalance(itemX, warehouse1))

	// 10 - 5 = 5 == nivel mínimo → procede y dispara la señal de reorden.
	_, err = coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
		Type: entity.MovementTypeShipment, ItemID: itemX, WarehouseID: warehouse1,
		Quantity: 5, Actor: testActor,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), coordinator.GetBalance(itemX, warehouse1))
	assert.NotEmpty(t, sink.All())
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_MueveStockEntreBodegas(t *testing.T) {
	f := newKardexFixture(t)
	f.receive(t, itemX, warehouse1, 10)

	group, err := f.coordinator.Transfer(context.Background(), ledger.TransferCommand{
		ItemID:          itemX,
		FromWarehouseID: warehouse1,
		ToWarehouseID:   warehouse2,
		Quantity:        4,
		Actor:           testActor,
	})
	require.NoError(t, err)
	require.NotNil(t, group)

	assert.Equal(t, int64(6), f.coordinator.GetBalance(itemX, warehouse1))
	assert.Equal(t, int64(4), f.coordinator.GetBalance(itemX, warehouse2))

	// El par OUT/IN comparte referencia y magnitud (invariante de emparejamiento).
	require.NotNil(t, group.Out)
	require.NotNil(t, group.In)
	assert.Equal(t, group.Reference, group.Out.Reference)
	assert.Equal(t, group.Reference, group.In.Reference)
	assert.Equal(t, int64(-4), group.Out.QuantityDelta)
	assert.Equal(t, int64(4), group.In.QuantityDelta)
	assert.Greater(t, group.In.Sequence, group.Out.Sequence)
}

func TestTransfer_StockInsuficienteNoRegistraNada(t *testing.T) {
	f := newKardexFixture(t)
	f.receive(t, itemX, warehouse1, 3)

	_, err := f.coordinator.Transfer(context.Background(), ledger.TransferCommand{
		ItemID:          itemX,
		FromWarehouseID: warehouse1,
		ToWarehouseID:   warehouse2,
		Quantity:        5,
		Actor:           testActor,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), f.coordinator.GetBalance(itemX, warehouse1))
	assert.Equal(t, int64(0), f.coordinator.GetBalance(itemX, warehouse2))

	movements, err := f.log.ReadSince(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Len(t, movements, 1, "solo la entrada inicial: el traslado no dejó rastro")
}

func TestTransfer_DestinoInvalidoCompensaHaciaAdelante(t *testing.T) {
	f := newKardexFixture(t)
	f.receive(t, itemY, warehouse1, 10)

	_, err := f.coordinator.Transfer(context.Background(), ledger.TransferCommand{
		ItemID:          itemY,
		FromWarehouseID: warehouse1,
		ToWarehouseID:   warehouse3, // inactiva: se detecta con el OUT ya confirmado
		Quantity:        10,
		Actor:           testActor,
	})
	require.ErrorIs(t, err, domain.ErrTransferFailed)

	// El balance origen vuelve a 10 vía movimiento compensatorio, nunca queda en 0.
	assert.Equal(t, int64(10), f.coordinator.GetBalance(itemY, warehouse1))
	assert.Equal(t, int64(0), f.coordinator.GetBalance(itemY, warehouse3))

	movements, err := f.log.ReadSince(context.Background(), 0, 100)
	require.NoError(t, err)
	require.Len(t, movements, 3, "entrada + OUT + ajuste compensatorio")

	out := movements[1]
	compensation := movements[2]
	assert.Equal(t, entity.MovementTypeTransferOut, out.Type)
	assert.Equal(t, entity.MovementTypeAdjustmentIncrease, compensation.Type)
	assert.Equal(t, out.Reference, compensation.Reference, "la compensación conserva la referencia del grupo")
	assert.Equal(t, -out.QuantityDelta, compensation.QuantityDelta)
}

func TestTransfer_MismaBodegaInvalida(t *testing.T) {
	f := newKardexFixture(t)
	f.receive(t, itemX, warehouse1, 10)

	_, err := f.coordinator.Transfer(context.Background(), ledger.TransferCommand{
		ItemID:          itemX,
		FromWarehouseID: warehouse1,
		ToWarehouseID:   warehouse1,
		Quantity:        2,
		Actor:           testActor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: serialización por clave
// ──────────────────────────────────────────────────────────────────────────────

// Dos despachos concurrentes no pueden leer ambos "stock suficiente" antes de
// confirmar: la validación y el append de una misma clave van bajo su mutex.
func TestConcurrencia_DespachosNoSobrevenden(t *testing.T) {
	f := newKardexFixture(t)
	f.receive(t, itemX, warehouse1, 50)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.coordinator.PostMovement(context.Background(), ledger.PostMovementCommand{
				Type:        entity.MovementTypeShipment,
				ItemID:      itemX,
				WarehouseID: warehouse1,
				Quantity:    5,
				Actor:       testActor,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded, "50 unidades alcanzan para exactamente 10 despachos de 5")
	assert.Equal(t, int64(0), f.coordinator.GetBalance(itemX, warehouse1))
}

func TestConcurrencia_TrasladosCruzadosSinDeadlock(t *testing.T) {
	f := newKardexFixture(t)
	f.receive(t, itemX, warehouse1, 100)
	f.receive(t, itemX, warehouse2, 100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.coordinator.Transfer(context.Background(), ledger.TransferCommand{
				ItemID: itemX, FromWarehouseID: warehouse1, ToWarehouseID: warehouse2,
				Quantity: 1, Actor: testActor,
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = f.coordinator.Transfer(context.Background(), ledger.TransferCommand{
				ItemID: itemX, FromWarehouseID: warehouse2, ToWarehouseID: warehouse1,
				Quantity: 1, Actor: testActor,
			})
		}()
	}
	wg.Wait()

	total := f.coordinator.GetBalance(itemX, warehouse1) + f.coordinator.GetBalance(itemX, warehouse2)
	assert.Equal(t, int64(200), total, "los traslados conservan el total entre bodegas")
}
