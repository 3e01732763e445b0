package sync

import "sync"

// keyedMutex serializa sincronizaciones concurrentes de la misma entidad
// (sucursal + tipo + id). El candado se toma por intento, nunca durante la
// espera de backoff, para no bloquear otras entidades de la llave.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock bloquea la llave y regresa la función que la libera. Las entradas sin
// esperas pendientes se eliminan del mapa al liberar.
func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
