package root_view

import (
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"balancechart/server/fastview"
)

// batchify collects updates from source and sends them as one batch every rate, in
// arrival order. Idempotent updates for an element with an idempotent update already
// pending are merged into it, later values winning. A non-idempotent update (scripts,
// structural ops) is never merged and ends every merge window before it, so ops never
// move across it. Pending updates are flushed when source closes.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		var b batch
		ticker := channerics.NewTicker(done, rate)
		send := func() bool {
			if b.empty() {
				return true
			}
			select {
			case output <- b.take():
				return true
			case <-done:
				return false
			}
		}

		for {
			select {
			case <-done:
				return
			case updates, ok := <-source:
				if !ok {
					send()
					return
				}
				for _, up := range updates {
					b.add(up)
				}
			case <-ticker:
				if !send() {
					return
				}
			}
		}
	}()

	return output
}

type batch struct {
	pending []fastview.EleUpdate
	// mergeable maps element ids to pending idempotent updates since the last
	// non-idempotent one.
	mergeable map[string]int
}

func (b *batch) add(up fastview.EleUpdate) {
	if b.mergeable == nil {
		b.mergeable = map[string]int{}
	}
	if !up.Idempotent() {
		b.pending = append(b.pending, up)
		b.mergeable = map[string]int{}
		return
	}
	if i, ok := b.mergeable[up.EleId]; ok {
		b.pending[i] = merge(b.pending[i], up)
		return
	}
	b.mergeable[up.EleId] = len(b.pending)
	b.pending = append(b.pending, up)
}

func (b *batch) empty() bool {
	return len(b.pending) == 0
}

func (b *batch) take() (updates []fastview.EleUpdate) {
	updates, b.pending, b.mergeable = b.pending, nil, nil
	return
}

// merge applies next over prev. Both are idempotent, so each key simply takes the
// later value.
func merge(prev, next fastview.EleUpdate) fastview.EleUpdate {
	ops := append([]fastview.Op(nil), prev.Ops...)
	for _, op := range next.Ops {
		replaced := false
		for i := range ops {
			if ops[i].Key == op.Key {
				ops[i].Value = op.Value
				replaced = true
			}
		}
		if !replaced {
			ops = append(ops, op)
		}
	}
	return fastview.EleUpdate{EleId: prev.EleId, Ops: ops}
}
