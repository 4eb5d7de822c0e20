package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/replaystats/internal/adapters/mq/queue"
	worker "github.com/okian/replaystats/internal/adapters/mq/worker"
	logging "github.com/okian/replaystats/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 16)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type recorder struct {
	mu   sync.Mutex
	seen map[string]int
	fail map[string]error
}

func newRecorder() *recorder {
	return &recorder{seen: make(map[string]int), fail: make(map[string]error)}
}

func (r *recorder) Process(ctx context.Context, job queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[job.ID]++
	return r.fail[job.ID]
}

func (r *recorder) count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[id]
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.seen {
		n += c
	}
	return n
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a mock queue", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		rec := newRecorder()
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go w.Run(ctx)

		convey.Convey("When jobs arrive they are processed once each", func() {
			q.jobs <- queue.Job{ID: "a", Path: "a.jsonl", Submitted: time.Now()}
			q.jobs <- queue.Job{ID: "b", Path: "b.jsonl", Submitted: time.Now()}
			time.Sleep(50 * time.Millisecond)

			convey.So(rec.count("a"), convey.ShouldEqual, 1)
			convey.So(rec.count("b"), convey.ShouldEqual, 1)
		})

		convey.Convey("When a job fails the worker keeps going", func() {
			rec.fail["bad"] = errors.New("malformed replay")
			q.jobs <- queue.Job{ID: "bad"}
			q.jobs <- queue.Job{ID: "good"}
			time.Sleep(50 * time.Millisecond)

			convey.So(rec.count("bad"), convey.ShouldEqual, 1)
			convey.So(rec.count("good"), convey.ShouldEqual, 1)
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})
}

func TestProcessorFunc(t *testing.T) {
	convey.Convey("A ProcessorFunc forwards to the function", t, func() {
		var got string
		p := worker.ProcessorFunc(func(ctx context.Context, job queue.Job) error {
			got = job.ID
			return nil
		})
		convey.So(p.Process(context.Background(), queue.Job{ID: "x"}), convey.ShouldBeNil)
		convey.So(got, convey.ShouldEqual, "x")
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		rec := newRecorder()

		convey.Convey("A non-positive count falls back to a default size", func() {
			pool := worker.NewPool(0, q, rec)
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("Drain processes every pending job before returning", func() {
			pool := worker.NewPool(4, q, rec)
			ctx := context.Background()
			pool.Start(ctx)

			for i := 0; i < 40; i++ {
				convey.So(q.Enqueue(ctx, queue.Job{ID: string(rune('A' + i))}), convey.ShouldBeNil)
			}

			drainCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			convey.So(pool.Drain(drainCtx), convey.ShouldBeNil)
			convey.So(rec.total(), convey.ShouldEqual, 40)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})

		convey.Convey("Shutdown stops idle workers", func() {
			pool := worker.NewPool(2, q, rec)
			pool.Start(context.Background())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})
}
