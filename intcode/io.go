package intcode

// Input provides values to the input instruction.
type Input interface {
	// Next returns the next input value, or false if the source is
	// exhausted.
	Next() (int64, bool)
}

// Output receives values from the output instruction, in program order.
type Output interface {
	Emit(v int64)
}

// InputFunc adapts a function to the Input interface.
type InputFunc func() (int64, bool)

func (f InputFunc) Next() (int64, bool) { return f() }

// OutputFunc adapts a function to the Output interface.
type OutputFunc func(int64)

func (f OutputFunc) Emit(v int64) { f(v) }

// Queue is an Input that yields a fixed sequence of values.
type Queue struct {
	vals []int64
}

// Inputs returns a Queue that yields vals in order.
func Inputs(vals ...int64) *Queue {
	return &Queue{vals: append([]int64(nil), vals...)}
}

func (q *Queue) Next() (int64, bool) {
	if len(q.vals) == 0 {
		return 0, false
	}
	v := q.vals[0]
	q.vals = q.vals[1:]
	return v, true
}

// Push appends values to the end of the queue.
func (q *Queue) Push(vals ...int64) { q.vals = append(q.vals, vals...) }

// Len returns the number of values remaining.
func (q *Queue) Len() int { return len(q.vals) }

// Recorder is an Output that records every emitted value.
type Recorder struct {
	Values []int64
}

func (r *Recorder) Emit(v int64) { r.Values = append(r.Values, v) }

// Last returns the most recently emitted value, and false if nothing
// has been emitted.
func (r *Recorder) Last() (int64, bool) {
	if len(r.Values) == 0 {
		return 0, false
	}
	return r.Values[len(r.Values)-1], true
}

type noInput struct{}

func (noInput) Next() (int64, bool) { return 0, false }

type discard struct{}

func (discard) Emit(int64) {}
