/*
Package cosign collects approvals of treasury signers before a request is
submitted.

Treasury operations require a signature of one treasury signer only, while the
treasury declares a threshold of signers that must agree on governance and
reserve operations. Collector closes this gap: every signer sends the same
request signed by its key, Collector accumulates signatures of distinct
signers in a ballot and submits a single request with all of them attached
once the threshold is reached. Ballots without votes for longer than the
expiration period are dropped.
*/
package cosign

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/common"
	"github.com/nspcc-dev/reserve-treasury/host"
	"github.com/nspcc-dev/reserve-treasury/treasury"
	"go.uber.org/zap"
)

// DefaultExpiration is the default lifetime of a ballot without new votes in
// seconds.
const DefaultExpiration = 3600

var (
	// ErrNoSignerApproval is returned for votes without signatures of
	// treasury signers.
	ErrNoSignerApproval = errors.New("request is not signed by any treasury signer")

	errTooManyVoters = errors.New("too many voters")
)

type (
	// Store is a part of neo-go storage keeping ballots.
	Store interface {
		common.Getter
		common.Putter
		Delete(key []byte)
		Seek(rng storage.SeekRange, f func(k, v []byte) bool)
	}

	// Submitter executes requests.
	Submitter interface {
		Submit(ctx context.Context, req host.SignedRequest) (*treasury.Receipt, error)
	}

	// Treasuries provides current treasury records.
	Treasuries interface {
		Treasury(id util.Uint160) (treasury.Record, error)
	}
)

// Result describes the state of a ballot after a vote.
type Result struct {
	ID        util.Uint256
	Votes     int
	Threshold int
	// Receipt is set when the request was submitted.
	Receipt *treasury.Receipt
}

// Collector accumulates approvals of treasury signers.
type Collector struct {
	log        *zap.Logger
	st         Store
	clock      treasury.Clock
	treasuries Treasuries
	submitter  Submitter
	expiration int64

	mtx sync.Mutex
}

// Option sets optional Collector parameters.
type Option func(*Collector)

// WithExpiration sets the lifetime of ballots without new votes in seconds.
func WithExpiration(d int64) Option {
	return func(c *Collector) {
		c.expiration = d
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Collector) {
		c.log = log
	}
}

// New returns a Collector keeping ballots in st. Usually h is a *host.Host
// which serves as both Treasuries and Submitter.
func New(st Store, clock treasury.Clock, treasuries Treasuries, submitter Submitter, opts ...Option) *Collector {
	c := &Collector{
		log:        zap.NewNop(),
		st:         st,
		clock:      clock,
		treasuries: treasuries,
		submitter:  submitter,
		expiration: DefaultExpiration,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Vote adds signatures of treasury signers from req to the ballot of the
// request. When the ballot collects the treasury threshold of distinct
// signers, the request with all collected signatures is submitted and the
// ballot is removed.
func (c *Collector) Vote(ctx context.Context, req host.SignedRequest) (Result, error) {
	id, err := req.ID()
	if err != nil {
		return Result{}, err
	}
	witnesses, err := req.Witnesses()
	if err != nil {
		return Result{}, err
	}
	rec, err := c.treasuries.Treasury(req.Treasury)
	if err != nil {
		return Result{}, err
	}
	// Only signer signatures are collected, the caller's one must be among them.
	if !rec.IsSigner(req.Caller) {
		return Result{}, fmt.Errorf("%w: caller %s is not a treasury signer",
			treasury.ErrUnauthorizedSigner, address.Uint160ToString(req.Caller))
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	now := c.clock.Now()
	if err := c.removeExpired(now); err != nil {
		return Result{}, err
	}

	b, found, err := c.ballot(id)
	if err != nil {
		return Result{}, err
	}
	if !found {
		b = Ballot{ID: id, Request: req}
		b.Request.Signatures = nil
	}

	added := 0
	for i, acc := range witnesses {
		if !rec.IsSigner(acc) || b.voted(acc) {
			continue
		}
		b.Voters = append(b.Voters, acc)
		b.Request.Signatures = append(b.Request.Signatures, req.Signatures[i])
		added++
	}
	if len(b.Voters) == 0 {
		return Result{}, ErrNoSignerApproval
	}

	res := Result{ID: id, Votes: len(b.Voters), Threshold: int(rec.Threshold)}

	if added > 0 {
		b.Updated = now
	}

	if res.Votes < res.Threshold {
		if err := common.SetSerialized(c.st, ballotKey(id), &b); err != nil {
			return Result{}, err
		}
		c.log.Debug("vote accepted",
			zap.Stringer("request", id),
			zap.Int("votes", res.Votes),
			zap.Int("threshold", res.Threshold))
		return res, nil
	}

	res.Receipt, err = c.submitter.Submit(ctx, b.Request)
	if err != nil {
		// Keep the ballot, the request may be resubmitted by the next vote.
		if sErr := common.SetSerialized(c.st, ballotKey(id), &b); sErr != nil {
			c.log.Error("can't store ballot", zap.Error(sErr))
		}
		return res, fmt.Errorf("submit request: %w", err)
	}

	c.st.Delete(ballotKey(id))

	c.log.Info("request approved and submitted",
		zap.Stringer("request", id),
		zap.String("treasury", address.Uint160ToString(req.Treasury)),
		zap.Int("votes", res.Votes))

	return res, nil
}

// Submit votes for req. The receipt is nil while the ballot collects votes,
// so Collector can be used in place of the host by request builders.
func (c *Collector) Submit(ctx context.Context, req host.SignedRequest) (*treasury.Receipt, error) {
	res, err := c.Vote(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Receipt, nil
}

// RemoveVotes drops the ballot of the request.
func (c *Collector) RemoveVotes(id util.Uint256) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.st.Delete(ballotKey(id))
}

// Ballots returns all pending ballots.
func (c *Collector) Ballots() ([]Ballot, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.ballots()
}

func (c *Collector) ballot(id util.Uint256) (Ballot, bool, error) {
	var b Ballot
	ok, err := common.GetSerialized(c.st, ballotKey(id), &b)
	return b, ok, err
}

func (c *Collector) ballots() ([]Ballot, error) {
	var (
		res  []Ballot
		dErr error
	)

	c.st.Seek(storage.SeekRange{Prefix: []byte{ballotKeyPrefix}}, func(_, v []byte) bool {
		var b Ballot
		r := io.NewBinReaderFromBuf(v)
		b.DecodeBinary(r)
		if r.Err != nil {
			dErr = fmt.Errorf("decode ballot: %w", r.Err)
			return false
		}
		res = append(res, b)
		return true
	})

	return res, dErr
}

// removeExpired drops ballots without votes for longer than the expiration
// period.
func (c *Collector) removeExpired(now int64) error {
	bs, err := c.ballots()
	if err != nil {
		return err
	}

	for i := range bs {
		if now-bs[i].Updated > c.expiration {
			c.st.Delete(ballotKey(bs[i].ID))
			c.log.Debug("ballot expired", zap.Stringer("request", bs[i].ID))
		}
	}

	return nil
}
