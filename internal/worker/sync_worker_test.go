package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets/memory"
)

func sample(id string) core.Transaction {
	return core.Transaction{
		ID: id, Owner: "u1", Kind: core.Expense, Title: "Lunch",
		Amount: core.Money{Cents: 1250}, Category: "Food",
		Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleMessage(t *testing.T) {
	mirror := memory.New()
	w := NewSyncWorker(mirror, 0)
	ctx := context.Background()

	if err := w.HandleMessage(ctx, amqp.NewCreateMessage(sample("a"))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := w.HandleMessage(ctx, amqp.NewCreateMessage(sample("b"))); err != nil {
		t.Fatalf("create: %v", err)
	}
	// redelivered create
	if err := w.HandleMessage(ctx, amqp.NewCreateMessage(sample("a"))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := w.HandleMessage(ctx, amqp.NewDeleteMessage(core.Expense, "a", "u1")); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rows := mirror.Rows(core.Expense)
	if len(rows) != 1 || rows[0].ID != "b" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestHandleMessage_Errors(t *testing.T) {
	w := NewSyncWorker(memory.New(), 0)
	ctx := context.Background()

	tests := []struct {
		name string
		msg  *amqp.TransactionSyncMessage
	}{
		{"create without snapshot", &amqp.TransactionSyncMessage{ID: "a", Kind: core.Income, Op: amqp.OpCreate}},
		{"unknown op", &amqp.TransactionSyncMessage{ID: "a", Kind: core.Income, Op: "update"}},
		{"invalid snapshot", func() *amqp.TransactionSyncMessage {
			tx := sample("a")
			tx.Category = "Nope"
			return amqp.NewCreateMessage(tx)
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.HandleMessage(ctx, tt.msg); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

// fakeConsumer feeds queued messages to the handler, then blocks until ctx ends.
type fakeConsumer struct {
	msgs []*amqp.TransactionSyncMessage
	errs []error
}

func (f *fakeConsumer) ConsumeTransactionSync(ctx context.Context, handler amqp.Handler) error {
	for _, m := range f.msgs {
		f.errs = append(f.errs, handler(ctx, m))
	}
	<-ctx.Done()
	return ctx.Err()
}

type layoutMirror struct {
	*memory.Mirror
	ensured int
}

func (l *layoutMirror) EnsureLayout(context.Context) error {
	l.ensured++
	return nil
}

func TestRun(t *testing.T) {
	mirror := &layoutMirror{Mirror: memory.New()}
	consumer := &fakeConsumer{msgs: []*amqp.TransactionSyncMessage{amqp.NewCreateMessage(sample("a"))}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewSyncWorker(mirror, time.Hour).Run(ctx, consumer)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() = %v, want deadline exceeded", err)
	}
	if mirror.ensured != 1 {
		t.Fatalf("layout ensured %d times, want 1", mirror.ensured)
	}
	if len(consumer.errs) != 1 || consumer.errs[0] != nil {
		t.Fatalf("handler results = %v", consumer.errs)
	}
	if len(mirror.Rows(core.Expense)) != 1 {
		t.Fatal("message was not mirrored")
	}
}
