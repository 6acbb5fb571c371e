package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	transportgrpc "github.com/aanand-mishra/persons-api/internal/transport/grpc"
)

const birthDateLayout = "2006-01-02"

type personFlags struct {
	firstName    string
	lastName     string
	nationalCode string
	birthDate    string
}

func (f *personFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&f.lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&f.nationalCode, "national-code", "", "10-digit national code")
	cmd.Flags().StringVar(&f.birthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
}

func (f *personFlags) message(id string) (*transportgrpc.PersonMessage, error) {
	msg := &transportgrpc.PersonMessage{
		ID:           id,
		FirstName:    f.firstName,
		LastName:     f.lastName,
		NationalCode: f.nationalCode,
	}
	if f.birthDate != "" {
		t, err := time.Parse(birthDateLayout, f.birthDate)
		if err != nil {
			return nil, fmt.Errorf("invalid --birth-date %q: want YYYY-MM-DD", f.birthDate)
		}
		msg.BirthDate = &t
	}
	return msg, nil
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all persons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.call(cmd, func(ctx context.Context, c PersonClient) error {
				resp, err := c.GetAllPersons(ctx, &transportgrpc.GetAllPersonsRequest{})
				if err != nil {
					return err
				}
				if opts.output == OutputJSON {
					return writeJSON(cmd.OutOrStdout(), resp)
				}
				return writePersons(cmd.OutOrStdout(), resp.Persons)
			})
		},
	}
}

func newGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show one person",
		Args:    cobra.ExactArgs(1),
		Example: "  persons-cli get 3f1c2a9e-8d7b-4c1e-9f3a-2b6d5e4c1a00",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, func(ctx context.Context, c PersonClient) error {
				resp, err := c.GetPerson(ctx, &transportgrpc.GetPersonRequest{ID: args[0]})
				if err != nil {
					return err
				}
				return opts.writePerson(cmd, resp.Person)
			})
		},
	}
}

func newCreateCommand(opts *options) *cobra.Command {
	var (
		flags personFlags
		id    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a person",
		Args:  cobra.NoArgs,
		Example: `  persons-cli create --first-name Ali --last-name Mohammadi \
    --national-code 1234567890 --birth-date 1995-01-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := flags.message(id)
			if err != nil {
				return err
			}
			return opts.call(cmd, func(ctx context.Context, c PersonClient) error {
				resp, err := c.CreatePerson(ctx, &transportgrpc.CreatePersonRequest{Person: msg})
				if err != nil {
					return err
				}
				return opts.writePerson(cmd, resp.Person)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "Explicit id (generated when empty)")
	return cmd
}

func newUpdateCommand(opts *options) *cobra.Command {
	var flags personFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a person's fields",
		Long:  "Replace every mutable field of the person with the given id. Omitted flags are sent empty.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := flags.message(args[0])
			if err != nil {
				return err
			}
			return opts.call(cmd, func(ctx context.Context, c PersonClient) error {
				resp, err := c.UpdatePerson(ctx, &transportgrpc.UpdatePersonRequest{Person: msg})
				if err != nil {
					return err
				}
				return opts.writePerson(cmd, resp.Person)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, func(ctx context.Context, c PersonClient) error {
				resp, err := c.DeletePerson(ctx, &transportgrpc.DeletePersonRequest{ID: args[0]})
				if err != nil {
					return err
				}
				if opts.output == OutputJSON {
					return writeJSON(cmd.OutOrStdout(), resp)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				return err
			})
		},
	}
}

func (o *options) writePerson(cmd *cobra.Command, p *transportgrpc.PersonMessage) error {
	if o.output == OutputJSON {
		return writeJSON(cmd.OutOrStdout(), p)
	}
	return writePersons(cmd.OutOrStdout(), []*transportgrpc.PersonMessage{p})
}
