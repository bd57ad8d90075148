// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// task is one repeating job.
type task struct {
	next     time.Time
	interval time.Duration
	job      func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].next.Before(q[j].next)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler runs jobs on their own goroutines at the scheduled times. Used
// for the periodic directory sampler.
type Scheduler struct {
	queue taskQueue
	mutex sync.Mutex

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewScheduler() *Scheduler {
	s := &Scheduler{
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	heap.Init(&s.queue)
	go s.run()
	return s
}

// Every runs job every interval, first after one interval.
func (s *Scheduler) Every(interval time.Duration, job func()) {
	if interval <= 0 {
		panic("timer: non-positive interval")
	}
	s.mutex.Lock()
	heap.Push(&s.queue, &task{
		next:     time.Now().Add(interval),
		interval: interval,
		job:      job,
	})
	s.mutex.Unlock()

	s.poke()
}

// Stop halts the scheduler and waits for its loop to exit. Jobs already
// running are not interrupted.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	t := time.NewTimer(time.Hour)
	defer t.Stop()

	for {
		wait := s.fireDue(time.Now())
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(wait)

		select {
		case <-s.stop:
			return
		case <-s.wake:
		case <-t.C:
		}
	}
}

// fireDue starts every due job and returns how long to sleep until the next.
func (s *Scheduler) fireDue(now time.Time) time.Duration {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.next.After(now) {
			return next.next.Sub(now)
		}
		go next.job()
		next.next = now.Add(next.interval)
		heap.Fix(&s.queue, next.index)
	}
	return time.Hour
}
