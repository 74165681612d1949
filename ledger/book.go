// ledger keeps account balances in minor units and a per-day history of them,
// from which the balance charts are drawn.
package ledger

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrUnknownAccount = errors.New("unknown account")
	ErrAccountClosed  = errors.New("account closed")
	ErrDuplicate      = errors.New("duplicate account id")
)

// DayBalance is the closing balance of a day of the month.
type DayBalance struct {
	Day   int
	Minor int64
}

// MonthHistory is the daily balances of one calendar month, in day order.
type MonthHistory struct {
	Year  int
	Month time.Month
	Days  []DayBalance
}

// AccountHistory is the state of one open account at snapshot time.
type AccountHistory struct {
	ID           string
	Name         string
	BalanceMinor int64
	Months       []MonthHistory
}

// Snapshot is a consistent copy of the book. Snapshots are idempotent: the latest
// one fully describes the book, so intervening snapshots may be dropped.
type Snapshot struct {
	Date     time.Time
	Accounts []AccountHistory
}

// AccountConfig opens an account. LifetimeDays closes it after that many simulated
// days; zero keeps it open.
type AccountConfig struct {
	ID           string
	Name         string
	OpeningMinor int64
	LifetimeDays int
}

type account struct {
	id       string
	name     string
	balance  int64
	months   []MonthHistory
	age      int
	lifetime int
	closed   bool
}

// Book is safe for concurrent use.
type Book struct {
	mu       sync.Mutex
	date     time.Time
	months   int
	accounts []*account
	subs     map[int]chan Snapshot
	nextSub  int
}

// NewBook opens the accounts on the start date, keeping at most months months of history.
func NewBook(start time.Time, months int, accounts ...AccountConfig) (*Book, error) {
	if months < 1 {
		months = 1
	}
	b := &Book{
		date:   truncateDay(start),
		months: months,
		subs:   map[int]chan Snapshot{},
	}
	for _, cfg := range accounts {
		if err := b.open(cfg); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Book) open(cfg AccountConfig) error {
	if b.find(cfg.ID) != nil {
		return errors.Wrapf(ErrDuplicate, "open %q", cfg.ID)
	}
	acct := &account{
		id:       cfg.ID,
		name:     cfg.Name,
		balance:  cfg.OpeningMinor,
		lifetime: cfg.LifetimeDays,
	}
	acct.record(b.date, b.months)
	b.accounts = append(b.accounts, acct)
	return nil
}

// Post adds amountMinor (negative for debits) to the account's balance for the current day.
func (b *Book) Post(id string, amountMinor int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct := b.find(id)
	if acct == nil {
		return errors.Wrapf(ErrUnknownAccount, "post to %q", id)
	}
	if acct.closed {
		return errors.Wrapf(ErrAccountClosed, "post to %q", id)
	}
	acct.balance += amountMinor
	acct.record(b.date, b.months)
	b.publish()
	return nil
}

// AdvanceDay moves the book to the next day, carrying every open balance forward and
// closing accounts whose lifetime has elapsed.
func (b *Book) AdvanceDay() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.date = b.date.AddDate(0, 0, 1)
	for _, acct := range b.accounts {
		if acct.closed {
			continue
		}
		acct.age++
		if acct.lifetime > 0 && acct.age >= acct.lifetime {
			acct.closed = true
			continue
		}
		acct.record(b.date, b.months)
	}
	b.publish()
}

// Close closes an account; closed accounts drop out of snapshots.
func (b *Book) Close(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct := b.find(id)
	if acct == nil {
		return errors.Wrapf(ErrUnknownAccount, "close %q", id)
	}
	if !acct.closed {
		acct.closed = true
		b.publish()
	}
	return nil
}

// Date returns the book's current day.
func (b *Book) Date() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.date
}

// Snapshot returns a deep copy of the open accounts.
func (b *Book) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// Subscribe returns a chan receiving the current snapshot, then a snapshot after every
// change. A slow subscriber only ever misses intermediate snapshots, never the latest.
// The chan is closed once done is closed.
func (b *Book) Subscribe(done <-chan struct{}) <-chan Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Snapshot, 1)
	ch <- b.snapshot()
	key := b.nextSub
	b.nextSub++
	b.subs[key] = ch

	go func() {
		<-done
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, key)
		close(ch)
	}()
	return ch
}

// publish requires b.mu. Only publishers send on subscriber chans, so after draining a
// full buffer the send cannot block.
func (b *Book) publish() {
	if len(b.subs) == 0 {
		return
	}
	snap := b.snapshot()
	for _, ch := range b.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (b *Book) snapshot() Snapshot {
	snap := Snapshot{Date: b.date}
	for _, acct := range b.accounts {
		if acct.closed {
			continue
		}
		hist := AccountHistory{
			ID:           acct.id,
			Name:         acct.name,
			BalanceMinor: acct.balance,
			Months:       make([]MonthHistory, len(acct.months)),
		}
		for i, m := range acct.months {
			hist.Months[i] = MonthHistory{
				Year:  m.Year,
				Month: m.Month,
				Days:  append([]DayBalance(nil), m.Days...),
			}
		}
		snap.Accounts = append(snap.Accounts, hist)
	}
	return snap
}

func (b *Book) find(id string) *account {
	for _, acct := range b.accounts {
		if acct.id == id {
			return acct
		}
	}
	return nil
}

// record sets the balance of date's day, opening a new month when needed and
// keeping at most keep months.
func (acct *account) record(date time.Time, keep int) {
	n := len(acct.months)
	if n == 0 || acct.months[n-1].Year != date.Year() || acct.months[n-1].Month != date.Month() {
		acct.months = append(acct.months, MonthHistory{Year: date.Year(), Month: date.Month()})
		if len(acct.months) > keep {
			acct.months = acct.months[len(acct.months)-keep:]
		}
		n = len(acct.months)
	}

	month := &acct.months[n-1]
	day := DayBalance{Day: date.Day(), Minor: acct.balance}
	if d := len(month.Days); d > 0 && month.Days[d-1].Day == day.Day {
		month.Days[d-1] = day
		return
	}
	month.Days = append(month.Days, day)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
