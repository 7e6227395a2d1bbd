package repokit

// Binder binds a domain repo to a Queryer, the pool or an open transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc lets a constructor act as a Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }
