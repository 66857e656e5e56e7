package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethersphere-game/ethersphere-contract/contracts"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// ErrDeployment is matched (see errors.Is) by any error returned from Deploy.
var ErrDeployment = errors.New("contract deployment failed")

// Deployed groups results of the successful contract deployment.
type Deployed struct {
	// Address of the contract on the chain.
	Address util.Uint160

	// Hash of the deploying transaction.
	TxHash util.Uint256
}

// Backend deploys compiled contracts to the networks it knows about.
type Backend interface {
	// Deploy publishes contract referenced by the artifact name to the given
	// network and waits for the deployment to complete. Network identifier is
	// interpreted by the Backend only.
	Deploy(ctx context.Context, artifact, network string) (Deployed, error)
}

// Result describes single completed step of the deployment sequence.
type Result struct {
	// Step is a 1-based position of the contract in the sequence.
	Step     int
	Artifact string
	Deployed
}

// Journal keeps track of deployed contracts. Record is called with a context
// that is never canceled: the contract is already on chain at that moment.
type Journal interface {
	Record(ctx context.Context, res Result) error
}

// Failure is returned by Deploy when some step of the sequence fails. Steps
// after the failed one are never attempted.
type Failure struct {
	// Step is a 1-based position of the failed contract in the sequence.
	Step     int
	Artifact string
	Cause    error
}

func (x *Failure) Error() string {
	return fmt.Sprintf("deploy %s contract (step #%d): %v", x.Artifact, x.Step, x.Cause)
}

// Unwrap returns the cause of the failure.
func (x *Failure) Unwrap() error { return x.Cause }

// Is makes any Failure match ErrDeployment.
func (x *Failure) Is(target error) bool { return target == ErrDeployment }

// Prm groups all parameters of the deployment procedure.
type Prm struct {
	// Writes progress into the log. Optional.
	Logger *zap.Logger

	// Performs every single deployment.
	Backend Backend

	// Target network passed to the Backend as is.
	Network string

	// Optional storage of deployment results. Each result is recorded before
	// the next contract is deployed.
	Journal Journal
}

// Deploy deploys all Ethersphere contracts to the network represented by
// given Prm.Network one by one in the order of contracts.Names: every next
// contract is requested only after the previous one is successfully deployed.
//
// Deploy aborts on the first failure and returns it as *Failure. Nothing is
// retried or rolled back, so repeated Deploy call deploys all contracts again
// unless the Backend skips them by itself.
func Deploy(ctx context.Context, prm Prm) error {
	log := prm.Logger
	if log == nil {
		log = zap.NewNop()
	}

	log = log.With(zap.String("network", prm.Network))

	for i, name := range contracts.Names() {
		step := i + 1

		err := ctx.Err()
		if err != nil {
			return &Failure{Step: step, Artifact: name, Cause: err}
		}

		log.Info("deploying contract...", zap.Int("step", step), zap.String("contract", name))

		d, err := prm.Backend.Deploy(ctx, name, prm.Network)
		if err != nil {
			return &Failure{Step: step, Artifact: name, Cause: err}
		}

		log.Info("contract successfully deployed",
			zap.Int("step", step), zap.String("contract", name),
			zap.Stringer("address", d.Address), zap.Stringer("tx", d.TxHash))

		if prm.Journal != nil {
			err = prm.Journal.Record(context.WithoutCancel(ctx), Result{
				Step:     step,
				Artifact: name,
				Deployed: d,
			})
			if err != nil {
				return &Failure{Step: step, Artifact: name, Cause: fmt.Errorf("record deployment: %w", err)}
			}
		}
	}

	log.Info("all contracts successfully deployed")

	return nil
}
