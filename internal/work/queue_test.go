package work

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSubmit_RunsInSubmissionOrder(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		q.Submit("append", func() { got = append(got, i) })
	}
	q.Drain()

	if len(got) != 100 {
		t.Fatalf("ran %d tasks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("position %d ran task %d; order not preserved", i, v)
		}
	}
}

func TestSubmit_TasksNeverOverlap(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var active, maxActive int32
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				q.Submit("probe", func() {
					now := atomic.AddInt32(&active, 1)
					for {
						seen := atomic.LoadInt32(&maxActive)
						if now <= seen || atomic.CompareAndSwapInt32(&maxActive, seen, now) {
							break
						}
					}
					atomic.AddInt32(&active, -1)
				})
			}
		}()
	}
	wg.Wait()
	q.Drain()

	if got := atomic.LoadInt32(&maxActive); got != 1 {
		t.Fatalf("saw %d tasks running at once, want 1", got)
	}
}

func TestSubmit_AllTasksRunExactlyOnce(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var count int32
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				q.Submit("count", func() { atomic.AddInt32(&count, 1) })
			}
		}()
	}
	wg.Wait()
	q.Drain()

	if count != 100 {
		t.Fatalf("ran %d tasks, want 100", count)
	}
}

func TestPanickingTaskDoesNotStopTheWorker(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	ran := false
	q.Submit("boom", func() { panic("boom") })
	q.Submit("after", func() { ran = true })
	q.Drain()

	if !ran {
		t.Fatalf("task after a panic never ran")
	}
}

func TestClose_DropsLateSubmissions(t *testing.T) {
	q := NewQueue()

	var count int32
	q.Submit("count", func() { atomic.AddInt32(&count, 1) })
	q.Close()
	q.Submit("late", func() { atomic.AddInt32(&count, 1) })
	q.Drain()

	if count != 1 {
		t.Fatalf("ran %d tasks, want 1 (late submission must be dropped)", count)
	}
}
