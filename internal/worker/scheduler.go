package worker

// Scheduler runs persistence jobs on behalf of the store.
type Scheduler interface {
	// Schedule replaces any job that has not run yet.
	Schedule(job func())
	// Flush runs the pending job now, if there is one.
	Flush()
	Stop()
}

// Immediate runs every job synchronously inside Schedule.
type Immediate struct{}

func (Immediate) Schedule(job func()) {
	if job != nil {
		job()
	}
}

func (Immediate) Flush() {}
func (Immediate) Stop()  {}
