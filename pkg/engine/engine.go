// Package engine implements the execution host for account-model
// programs.
//
// The engine owns everything the program core deliberately does not:
// it loads pre-state accounts from the store, assigns the
// per-account IsAuthorized flag from the transaction's declared
// signer set, invokes the target program, recursively executes the
// chained calls it emits, verifies that every delegated authorization
// is backed by a PDA seed of the calling program, and commits all
// resulting post states atomically, or none of them.
//
// Signature verification itself is out of scope: the engine trusts
// the transaction's signer list the way the original host trusts its
// witness set, and programs in turn trust the flags the engine hands
// them. PDA delegation is the one claim the engine re-checks, because
// a caller could otherwise forge authority over accounts it does not
// control.
package engine

import (
	"bytes"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/zledger/treasury/pkg/pda"
	"github.com/zledger/treasury/pkg/store"
	"github.com/zledger/treasury/pkg/types"
)

// Program is an executable instruction handler registered with the
// engine.
type Program interface {
	// ID returns the program's identity.
	ID() types.Pubkey

	// Execute runs one instruction against pre-state accounts,
	// returning one post state per pre state plus any chained calls.
	Execute(preStates []types.AccountWithMetadata, instruction []byte) (*types.ProgramOutput, error)
}

// Transaction is one host-level execution request.
type Transaction struct {
	// ProgramID is the program to invoke.
	ProgramID types.Pubkey

	// Instruction is the opaque instruction payload.
	Instruction []byte

	// AccountIDs is the ordered account list handed to the program.
	AccountIDs []types.Pubkey

	// Signers are the account ids covered by the transaction's
	// signature set. The engine marks exactly these authorized.
	Signers []types.Pubkey
}

// Receipt summarizes a committed transaction.
type Receipt struct {
	// ExecutedCalls counts program invocations, chained calls
	// included.
	ExecutedCalls int

	// CommittedAccounts counts distinct accounts written.
	CommittedAccounts int
}

// Options configures engine behavior.
type Options struct {
	// MaxCallDepth bounds chained-call recursion.
	MaxCallDepth int

	// Logger receives structured execution logs.
	Logger *zap.Logger
}

// DefaultOptions returns the default engine options.
func DefaultOptions() *Options {
	return &Options{
		MaxCallDepth: 4,
		Logger:       zap.NewNop(),
	}
}

// Engine executes transactions against registered programs and an
// account store.
type Engine struct {
	mu       sync.Mutex
	store    store.Store
	programs map[types.Pubkey]Program
	options  *Options
	log      *zap.Logger
}

// New creates an engine over the given store.
func New(st store.Store, options *Options) *Engine {
	if options == nil {
		options = DefaultOptions()
	}
	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:    st,
		programs: make(map[types.Pubkey]Program),
		options:  options,
		log:      log,
	}
}

// Register adds a program to the engine.
func (e *Engine) Register(p Program) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := p.ID()
	if _, exists := e.programs[id]; exists {
		return fmt.Errorf("%w: %s", ErrProgramAlreadyRegistered, id)
	}
	e.programs[id] = p
	return nil
}

// commit is one pending account write produced during execution.
type commit struct {
	id      types.Pubkey
	post    types.PostState
	program types.Pubkey
}

// Execute runs a transaction to completion. On success every post
// state of the transaction and its chained calls is committed in one
// batch; on any error nothing is written and the error is returned
// for the host to record as a failed transaction.
func (e *Engine) Execute(tx *Transaction) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[types.Pubkey]struct{}, len(tx.AccountIDs))
	for _, id := range tx.AccountIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAccount, id)
		}
		seen[id] = struct{}{}
	}

	signers := make(map[types.Pubkey]struct{}, len(tx.Signers))
	for _, s := range tx.Signers {
		signers[s] = struct{}{}
	}

	preStates := make([]types.AccountWithMetadata, len(tx.AccountIDs))
	for i, id := range tx.AccountIDs {
		record, err := e.store.Get(id)
		if err != nil {
			return nil, err
		}
		account, err := types.NewAccount(record.Data)
		if err != nil {
			return nil, err
		}
		_, signed := signers[id]
		preStates[i] = types.NewAccountWithMetadata(id, account, signed)
	}

	run := &execution{engine: e}
	if err := run.call(tx.ProgramID, tx.Instruction, preStates, 0); err != nil {
		e.log.Warn("transaction failed",
			zap.Stringer("program", tx.ProgramID),
			zap.Int("accounts", len(tx.AccountIDs)),
			zap.Error(err))
		return nil, err
	}

	committed, err := e.applyCommits(run.commits)
	if err != nil {
		e.log.Warn("commit refused",
			zap.Stringer("program", tx.ProgramID),
			zap.Error(err))
		return nil, err
	}

	e.log.Info("transaction committed",
		zap.Stringer("program", tx.ProgramID),
		zap.Int("calls", run.calls),
		zap.Int("accounts", committed))

	return &Receipt{ExecutedCalls: run.calls, CommittedAccounts: committed}, nil
}

// execution tracks one transaction's call tree.
type execution struct {
	engine  *Engine
	commits []commit
	calls   int
}

// call invokes one program and recurses into its chained calls,
// depth first. The caller's post states are recorded before any
// callee runs, so a callee's writes to a shared account land after
// the caller's pass-through and override it.
func (x *execution) call(programID types.Pubkey, instruction []byte, preStates []types.AccountWithMetadata, depth int) error {
	if depth > x.engine.options.MaxCallDepth {
		return fmt.Errorf("%w: depth %d", ErrCallDepthExceeded, depth)
	}

	program, ok := x.engine.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, programID)
	}

	x.calls++
	out, err := program.Execute(preStates, instruction)
	if err != nil {
		return err
	}
	if len(out.PostStates) != len(preStates) {
		return fmt.Errorf("%w: program %s returned %d post states for %d pre states",
			ErrPostStateCount, programID, len(out.PostStates), len(preStates))
	}

	for i, post := range out.PostStates {
		x.commits = append(x.commits, commit{
			id:      preStates[i].AccountID,
			post:    post,
			program: programID,
		})
	}

	for _, chained := range out.ChainedCalls {
		if err := checkDuplicateAccounts(chained.PreStates); err != nil {
			return err
		}
		if err := verifyDelegation(programID, preStates, chained); err != nil {
			return err
		}
		x.engine.log.Debug("chained call",
			zap.Stringer("caller", programID),
			zap.Stringer("callee", chained.ProgramID),
			zap.Int("depth", depth+1))
		if err := x.call(chained.ProgramID, chained.InstructionData, chained.PreStates, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// checkDuplicateAccounts rejects an account list naming the same id
// twice. Accounts are handed to programs as value clones, so a
// duplicated id would yield two independent post states for one
// account and let a transfer between them create balance out of
// nothing. Top-level transactions get the same check in Execute.
func checkDuplicateAccounts(preStates []types.AccountWithMetadata) error {
	seen := make(map[types.Pubkey]struct{}, len(preStates))
	for _, pre := range preStates {
		if _, dup := seen[pre.AccountID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, pre.AccountID)
		}
		seen[pre.AccountID] = struct{}{}
	}
	return nil
}

// verifyDelegation checks the chained call's authorization flags
// against the caller's scope. An account the caller hands over as
// authorized must either have been authorized in the caller's own
// pre-state list, or be derivable from the caller's program id and
// one of the attached seeds. Anything else is a forgery and aborts
// the transaction.
//
// This is the trust boundary of the model: programs assume the flags
// they receive are legitimate, and the engine makes that assumption
// hold.
func verifyDelegation(callerID types.Pubkey, callerPre []types.AccountWithMetadata, chained types.ChainedCall) error {
	authorized := make(map[types.Pubkey]bool, len(callerPre))
	for _, pre := range callerPre {
		if pre.IsAuthorized {
			authorized[pre.AccountID] = true
		}
	}

	for _, pre := range chained.PreStates {
		if !pre.IsAuthorized || authorized[pre.AccountID] {
			continue
		}
		covered := false
		for _, seed := range chained.Seeds {
			if pda.Verify(callerID, seed, pre.AccountID) {
				covered = true
				break
			}
		}
		if !covered {
			return fmt.Errorf("%w: caller %s escalated %s without a matching seed",
				ErrForgedAuthorization, callerID, pre.AccountID)
		}
	}
	return nil
}

// applyCommits validates ownership for every pending write and, if
// all pass, applies them to the store as one batch. Later commits to
// the same account override earlier ones, matching call order.
func (e *Engine) applyCommits(commits []commit) (int, error) {
	pending := make(map[types.Pubkey]store.Record)
	order := make([]types.Pubkey, 0, len(commits))

	current := func(id types.Pubkey) (store.Record, error) {
		if record, ok := pending[id]; ok {
			return record, nil
		}
		return e.store.Get(id)
	}

	for _, c := range commits {
		record, err := current(c.id)
		if err != nil {
			return 0, err
		}

		changed := !bytes.Equal(record.Data, c.post.Account.Data)
		if c.post.Claimed {
			if !record.IsUninitialized() {
				return 0, fmt.Errorf("%w: program %s claimed initialized account %s",
					ErrOwnershipViolation, c.program, c.id)
			}
			record.Owner = c.program
		} else if changed && record.Owner != c.program {
			return 0, fmt.Errorf("%w: program %s mutated account %s owned by %s",
				ErrOwnershipViolation, c.program, c.id, record.Owner)
		}

		if changed || c.post.Claimed {
			data := make([]byte, len(c.post.Account.Data))
			copy(data, c.post.Account.Data)
			record.Data = data

			if _, queued := pending[c.id]; !queued {
				order = append(order, c.id)
			}
			pending[c.id] = record
		}
	}

	entries := make([]store.Entry, 0, len(order))
	for _, id := range order {
		entries = append(entries, store.Entry{ID: id, Record: pending[id]})
	}
	if err := e.store.SetBatch(entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
