//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prep implements the preprocessing of authenticated
// multiplication triples, random bits, and input shares for the
// Boolean online phase.
//
// The SharePrep binds lazily to the online protocol: the first Bind
// creates the triple generators against the protocol's network
// group. After binding, the online phase drains the preprocessed
// values with the Triple, Bit, and Input accessors which refill the
// queues from the generators when they run empty.
package prep

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/share"
	"github.com/markkurossi/tinier/triplegen"
	"go.uber.org/zap"
)

// TripleGenerator defines the generator of authenticated triples and
// input shares.
type TripleGenerator interface {
	GenerateTriples() ([]share.Triple, error)
	GenerateInputs(player int) ([]share.Input, error)
	BytesSent() uint64
	SetSingleThreaded(single bool)
	Close() error
}

// GeneratorFactory creates triple generators.
type GeneratorFactory func(setup *triplegen.OTSetup, g *party.Group,
	nplayers, batchSize, nthreads int, params triplegen.Params,
	key share.KeyShare) (TripleGenerator, error)

// NewOTGenerator creates OT-based triple generators.
func NewOTGenerator(setup *triplegen.OTSetup, g *party.Group,
	nplayers, batchSize, nthreads int, params triplegen.Params,
	key share.KeyShare) (TripleGenerator, error) {

	gen, err := triplegen.NewGenerator(setup, g, nplayers, batchSize,
		nthreads, params, key)
	if err != nil {
		return nil, err
	}
	return gen, nil
}

// DealerFactory returns a factory creating generators from the
// trusted dealer.
func DealerFactory(dealer *triplegen.Dealer) GeneratorFactory {
	return func(setup *triplegen.OTSetup, g *party.Group,
		nplayers, batchSize, nthreads int, params triplegen.Params,
		key share.KeyShare) (TripleGenerator, error) {

		gen, err := dealer.NewGenerator(setup, g, nplayers, batchSize,
			nthreads, params, key)
		if err != nil {
			return nil, err
		}
		return gen, nil
	}
}

// Options define the preprocessing options.
type Options struct {
	// BatchSize defines the number of values the generators create in
	// one call.
	BatchSize int
}

// DefaultOptions define the default preprocessing options.
var DefaultOptions = Options{
	BatchSize: 1000,
}

// Option configures a SharePrep.
type Option func(p *SharePrep)

// WithOptions sets the preprocessing options.
func WithOptions(opts Options) Option {
	return func(p *SharePrep) {
		p.opts = opts
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *SharePrep) {
		p.log = log
	}
}

// WithGeneratorFactory sets the triple generator factory.
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(p *SharePrep) {
		p.newGenerator = f
	}
}

// WithRand sets the randomness source of the base OT setups.
func WithRand(rand io.Reader) Option {
	return func(p *SharePrep) {
		p.rand = rand
	}
}

// SharePrep implements the preprocessing of authenticated bit
// shares. The SharePrep is not safe for concurrent use.
type SharePrep struct {
	PersonalPrep
	thread       *party.Thread
	opts         Options
	log          *zap.SugaredLogger
	newGenerator GeneratorFactory
	rand         io.Reader
	group        *party.Group
	params       triplegen.Params
	gen          TripleGenerator
	real         TripleGenerator
	closedSent   uint64
	closed       bool
}

// New creates a new preprocessing for the thread with the trust
// mode.
func New(usage *Usage, thread *party.Thread, mode Mode,
	opts ...Option) *SharePrep {

	p := &SharePrep{
		thread:       thread,
		opts:         DefaultOptions,
		newGenerator: NewOTGenerator,
		rand:         rand.Reader,
	}
	p.PersonalPrep = newPersonalPrep(usage, mode, p)
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = zap.NewNop().Sugar()
	}
	p.log = p.log.With("mode", mode.String())

	return p
}

// NewSecret creates a new preprocessing of secret triples.
func NewSecret(usage *Usage, thread *party.Thread, opts ...Option) *SharePrep {
	return New(usage, thread, SecretMode{}, opts...)
}

// NewForProcessor creates a new preprocessing of secret triples. The
// processor is not used.
func NewForProcessor(proc any, usage *Usage, thread *party.Thread,
	opts ...Option) *SharePrep {
	return NewSecret(usage, thread, opts...)
}

// Bound tests if the preprocessing is bound to a protocol.
func (p *SharePrep) Bound() bool {
	return p.gen != nil
}

// Bind binds the preprocessing to the protocol. The first call
// creates the triple generators for the protocol's network group and
// the thread's MAC key share. The subsequent calls do nothing.
func (p *SharePrep) Bind(proto party.Protocol) error {
	if p.closed {
		return fmt.Errorf("bind: preprocessing closed")
	}
	if p.gen != nil {
		return nil
	}
	g := proto.Group()
	if g.NumPlayers() != p.thread.P.NumPlayers() {
		return fmt.Errorf("bind: group has %v players, thread %v",
			g.NumPlayers(), p.thread.P.NumPlayers())
	}

	p.params = triplegen.Params{
		GenerateMACs: true,
		Amplify:      false,
		Check:        false,
	}
	gen, err := p.newGenerator(triplegen.NewOTSetup(p.rand), g, -1,
		p.opts.BatchSize, 1, p.params, p.thread.MC.KeyShare())
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	gen.SetSingleThreaded(true)

	realGen, err := p.initReal(g)
	if err != nil {
		gen.Close()
		return fmt.Errorf("bind: %w", err)
	}
	p.resizeInputs(g.NumPlayers())
	p.group = g
	p.gen = gen
	p.real = realGen

	p.log.Debugf("bound to group %v: batch=%v", g, p.opts.BatchSize)

	return nil
}

// initReal creates the generator for the personal triples.
func (p *SharePrep) initReal(g *party.Group) (TripleGenerator, error) {
	params := triplegen.Params{
		GenerateMACs: true,
		Amplify:      false,
		Check:        true,
	}
	gen, err := p.newGenerator(triplegen.NewOTSetup(p.rand), g, -1,
		p.opts.BatchSize, 1, params, p.thread.MC.KeyShare())
	if err != nil {
		return nil, err
	}
	gen.SetSingleThreaded(true)
	return gen, nil
}

// BufferTriples buffers one batch of triples. The function panics if
// the preprocessing is not bound.
func (p *SharePrep) BufferTriples() error {
	switch mode := p.mode.(type) {
	case PersonalMode:
		return p.bufferPersonalTriples(mode.Owner, p.real, p.group,
			p.thread.MC.KeyShare())

	case SecretMode:
		return p.bufferSecretTriples()

	default:
		panic(fmt.Sprintf("invalid mode %T", mode))
	}
}

func (p *SharePrep) bufferSecretTriples() error {
	p.assertBound()

	triples, err := p.gen.GenerateTriples()
	if err != nil {
		return err
	}
	p.triples = append(p.triples, triples...)
	p.log.Debugf("buffered %v triples", len(triples))

	return nil
}

// BufferInputs buffers one batch of inputs of player. The inputs are
// appended in the generation order. The function panics if the
// preprocessing is not bound.
func (p *SharePrep) BufferInputs(player int) error {
	p.assertBound()

	if player < 0 || player >= len(p.inputs) {
		return fmt.Errorf("invalid input player %v: expected [0...%v[",
			player, len(p.inputs))
	}
	inputs, err := p.gen.GenerateInputs(player)
	if err != nil {
		return err
	}
	p.inputs[player] = append(p.inputs[player], inputs...)
	p.log.Debugf("buffered %v inputs for player %v", len(inputs), player)

	return nil
}

// BufferBits buffers one random bit derived from the inputs of all
// players.
func (p *SharePrep) BufferBits() error {
	p.assertBound()

	bit, err := p.RandomFromInputs(p.group.NumPlayers())
	if err != nil {
		return err
	}
	p.bits = append(p.bits, bit)
	return nil
}

// DataSent returns the number of bytes the generators have sent.
func (p *SharePrep) DataSent() uint64 {
	result := p.closedSent
	if p.gen != nil {
		result += p.gen.BytesSent()
	}
	if p.real != nil {
		result += p.real.BytesSent()
	}
	return result
}

// Close releases the generators. The preprocessing can't be bound
// after it is closed.
func (p *SharePrep) Close() error {
	p.closedSent = p.DataSent()
	p.closed = true

	var errs []error
	if p.gen != nil {
		errs = append(errs, p.gen.Close())
		p.gen = nil
	}
	if p.real != nil {
		errs = append(errs, p.real.Close())
		p.real = nil
	}
	return errors.Join(errs...)
}

func (p *SharePrep) assertBound() {
	if p.gen == nil {
		panic("preprocessing not bound")
	}
}
