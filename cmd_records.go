package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevemurr/policyledger/policy"
	"github.com/stevemurr/policyledger/store"
	"github.com/stevemurr/policyledger/view"
)

type recordFlags struct {
	name       string
	age        int
	policyType string
	sumInsured float64
	vehicleAge int
}

func (f *recordFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Full name")
	fl.IntVar(&f.age, "age", 0, "Age in years")
	fl.StringVar(&f.policyType, "type", "", "Policy type: 1/life, 2/health, 3/auto")
	fl.Float64Var(&f.sumInsured, "sum-insured", 0, "Sum insured")
	fl.IntVar(&f.vehicleAge, "vehicle-age", 0, "Vehicle age in years (auto only)")
}

// fields returns only the values whose flags were set on the command line.
func (f *recordFlags) fields(cmd *cobra.Command) (policy.Fields, error) {
	var out policy.Fields
	changed := cmd.Flags().Changed
	if changed("name") {
		out.Name = policy.Ptr(f.name)
	}
	if changed("age") {
		out.Age = policy.Ptr(f.age)
	}
	if changed("type") {
		t, err := policy.ParseType(f.policyType)
		if err != nil {
			return out, err
		}
		out.Type = policy.Ptr(t)
	}
	if changed("sum-insured") {
		out.SumInsured = policy.Ptr(f.sumInsured)
	}
	if changed("vehicle-age") {
		out.VehicleAge = policy.Ptr(f.vehicleAge)
	}
	return out, nil
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	flags := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a customer/policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := flags.fields(cmd)
			if err != nil {
				return err
			}
			return withRecords(cmd, opts, func(s *store.Records) error {
				rec, err := s.Add(f)
				if err := warnIfNotDurable(cmd, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Customer added with ID %d\n", rec.ID)
				return nil
			})
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"display"},
		Short:   "Display all customers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRecords(cmd, opts, func(s *store.Records) error {
				view.List(cmd.OutOrStdout(), s.List())
				return nil
			})
		},
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"search"},
		Short:   "Show one customer by ID",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRecords(cmd, opts, func(s *store.Records) error {
				rec, err := s.FindByID(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), view.Line(rec))
				return nil
			})
		},
	}
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	flags := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a customer; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := flags.fields(cmd)
			if err != nil {
				return err
			}
			return withRecords(cmd, opts, func(s *store.Records) error {
				_, err := s.Update(id, f)
				if err := warnIfNotDurable(cmd, err); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Customer updated.")
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRecords(cmd, opts, func(s *store.Records) error {
				if err := warnIfNotDurable(cmd, s.Delete(id)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Customer deleted.")
				return nil
			})
		},
	}
}

func newPremiumCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "premium <id>",
		Short: "Calculate the premium for a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRecords(cmd, opts, func(s *store.Records) error {
				rec, err := s.FindByID(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), view.PremiumLine(rec))
				return nil
			})
		},
	}
}
