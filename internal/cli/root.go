// Package cli provides the command-line client for the Persons API.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	transportgrpc "github.com/aanand-mishra/persons-api/internal/transport/grpc"
)

// Version information (set at build time).
var Version = "1.0.0"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// PersonClient is the subset of the gRPC client the commands call.
type PersonClient interface {
	CreatePerson(ctx context.Context, in *transportgrpc.CreatePersonRequest, opts ...grpc.CallOption) (*transportgrpc.CreatePersonResponse, error)
	GetPerson(ctx context.Context, in *transportgrpc.GetPersonRequest, opts ...grpc.CallOption) (*transportgrpc.GetPersonResponse, error)
	UpdatePerson(ctx context.Context, in *transportgrpc.UpdatePersonRequest, opts ...grpc.CallOption) (*transportgrpc.UpdatePersonResponse, error)
	DeletePerson(ctx context.Context, in *transportgrpc.DeletePersonRequest, opts ...grpc.CallOption) (*transportgrpc.DeletePersonResponse, error)
	GetAllPersons(ctx context.Context, in *transportgrpc.GetAllPersonsRequest, opts ...grpc.CallOption) (*transportgrpc.GetAllPersonsResponse, error)
}

// ConnectFunc opens a client for addr. The returned func releases it.
type ConnectFunc func(addr string) (PersonClient, func() error, error)

// Dial connects to a Persons API server over plaintext gRPC.
func Dial(addr string) (PersonClient, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return transportgrpc.NewClient(conn), conn.Close, nil
}

type options struct {
	addr    string
	output  string
	timeout time.Duration
	connect ConnectFunc
}

// NewRootCmd creates the root command using Dial.
func NewRootCmd() *cobra.Command {
	return newRootCmd(Dial)
}

func newRootCmd(connect ConnectFunc) *cobra.Command {
	opts := &options{connect: connect}

	rootCmd := &cobra.Command{
		Use:   "persons-cli",
		Short: "Command-line client for the Persons API",
		Long: `persons-cli talks to a running persons-api server over gRPC.

It can list, fetch, create, update and delete person records.`,
		Version: Version,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			switch opts.output {
			case OutputText, OutputJSON:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want text or json)", opts.output)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.addr, "addr", "localhost:5079", "Persons API gRPC address")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", OutputText, "Output format (text|json)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Per-call timeout")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputText, OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newGetCommand(opts))
	rootCmd.AddCommand(newCreateCommand(opts))
	rootCmd.AddCommand(newUpdateCommand(opts))
	rootCmd.AddCommand(newDeleteCommand(opts))

	return rootCmd
}

// call connects, runs fn under the per-call timeout and releases the connection.
func (o *options) call(cmd *cobra.Command, fn func(context.Context, PersonClient) error) error {
	client, closeFn, err := o.connect(o.addr)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	return fn(ctx, client)
}
