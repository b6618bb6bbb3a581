package ledger

import "sync"

// keyMutex serializa las operaciones que tocan una misma clave (ítem, bodega):
// validación + append + proyección ocurren bajo el mutex de la clave, mientras
// claves disjuntas avanzan en paralelo. Evita la carrera check-then-act de dos
// despachos concurrentes que leen "stock suficiente" antes de confirmar.
type keyMutex struct {
	mu    sync.Mutex
	locks map[balanceKey]*sync.Mutex
}

func newKeyMutex() *keyMutex {
	return &keyMutex{locks: make(map[balanceKey]*sync.Mutex)}
}

// get devuelve el mutex de la clave, creándolo la primera vez.
// Los mutex nunca se descartan; el mapa queda acotado por el número de claves vivas.
func (k *keyMutex) get(key balanceKey) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock toma el mutex de la clave y devuelve la función de liberación.
func (k *keyMutex) Lock(key balanceKey) func() {
	m := k.get(key)
	m.Lock()
	return m.Unlock
}

// LockPair toma los mutex de dos claves en orden determinista para evitar
// deadlock entre traslados cruzados (A→B concurrente con B→A).
func (k *keyMutex) LockPair(a, b balanceKey) func() {
	if a == b {
		return k.Lock(a)
	}
	first, second := a, b
	if less(b, a) {
		first, second = b, a
	}
	mf, ms := k.get(first), k.get(second)
	mf.Lock()
	ms.Lock()
	return func() {
		ms.Unlock()
		mf.Unlock()
	}
}

func less(a, b balanceKey) bool {
	if a.itemID != b.itemID {
		return a.itemID < b.itemID
	}
	return a.warehouseID < b.warehouseID
}
