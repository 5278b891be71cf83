package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pharmacounter/internal/core"
)

var nowFunc = time.Now

// draftFlags are the editor inputs shared by add and edit.
type draftFlags struct {
	fields         map[string]*string
	symptoms       []string
	removeSymptoms []string
	products       []string
	operator       string
	attest         bool
}

func (f *draftFlags) register(cmd *cobra.Command) {
	f.fields = map[string]*string{}
	for _, field := range []struct{ name, usage string }{
		{core.FieldIndications, "indications text"},
		{core.FieldContraindications, "contraindications text"},
		{core.FieldInteractions, "interactions text"},
		{core.FieldMechanismOfAction, "mechanism of action text"},
	} {
		f.fields[field.name] = cmd.Flags().String(field.name, "", field.usage)
	}
	cmd.Flags().StringArrayVar(&f.symptoms, "symptom", nil, "symptom keyword to add (repeatable)")
	cmd.Flags().StringArrayVar(&f.products, "product", nil,
		`product as "tradeName|manufacturer|type|category|dosage|quantity|commonDosage"; trailing parts may be omitted (repeatable)`)
	cmd.Flags().StringVar(&f.operator, "operator", "", "name of the operator attesting the record")
	cmd.Flags().BoolVar(&f.attest, "attest", false, "confirm the data was reviewed")
}

// apply writes every flag the user set into the session.
func (f *draftFlags) apply(cmd *cobra.Command, s *core.Session) error {
	for field, v := range f.fields {
		if cmd.Flags().Changed(field) {
			if err := s.SetField(field, *v); err != nil {
				return err
			}
		}
	}
	for _, sym := range f.removeSymptoms {
		if _, err := s.RemoveSymptom(sym); err != nil {
			return err
		}
	}
	for _, sym := range f.symptoms {
		if _, err := s.AddSymptom(sym); err != nil {
			return err
		}
	}
	for _, raw := range f.products {
		if err := addProduct(s, raw); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("operator") {
		if err := s.SetOperator(f.operator); err != nil {
			return err
		}
	}
	return s.SetAttested(f.attest)
}

var productFlagFields = []string{
	core.ProductFieldTradeName,
	core.ProductFieldManufacturer,
	core.ProductFieldType,
	core.ProductFieldCategory,
	core.ProductFieldDosage,
	core.ProductFieldQuantity,
	core.ProductFieldCommonDosage,
}

func addProduct(s *core.Session, raw string) error {
	parts := strings.Split(raw, "|")
	if len(parts) > len(productFlagFields) {
		return fmt.Errorf("product %q has more than %d parts", raw, len(productFlagFields))
	}
	if _, err := s.AddProduct(); err != nil {
		return err
	}
	idx := len(s.Draft().Products) - 1
	for i, v := range parts {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if err := s.UpdateProduct(idx, productFlagFields[i], v); err != nil {
			return err
		}
	}
	return nil
}

// commit finalizes the session, cancelling it when anything fails.
func commit(cmd *cobra.Command, s *core.Session) error {
	rec, err := s.Commit(cmd.Context())
	if err != nil {
		_ = s.Cancel()
		var verr core.ValidationError
		if errors.As(err, &verr) {
			return errors.New(verr.Message)
		}
		return err
	}
	return printJSON(cmd.OutOrStdout(), rec)
}

func newAddCmd(a *app) *cobra.Command {
	var (
		flags   draftFlags
		prefill bool
	)
	cmd := &cobra.Command{
		Use:   "add <ingredient>",
		Short: "Create a record, optionally pre-filled by the AI provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			s := catalog.Editor.NewSession()
			if err := s.SetIngredient(args[0]); err != nil {
				return err
			}
			if prefill {
				if err := s.Augment(cmd.Context(), args[0]); err != nil {
					_ = s.Cancel()
					if errors.Is(err, core.ErrCollaborator) {
						return fmt.Errorf("%s (%w)", core.MsgAugmentFailed, err)
					}
					return err
				}
			}
			if err := flags.apply(cmd, s); err != nil {
				_ = s.Cancel()
				return err
			}
			return commit(cmd, s)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&prefill, "prefill", false, "pre-fill the draft from the AI provider before applying flags")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		flags draftFlags
		name  string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			s, err := catalog.Editor.EditSession(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				if err := s.SetField(core.FieldName, name); err != nil {
					return err
				}
			}
			if err := flags.apply(cmd, s); err != nil {
				_ = s.Cancel()
				return err
			}
			return commit(cmd, s)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "rename the ingredient")
	cmd.Flags().StringArrayVar(&flags.removeSymptoms, "remove-symptom", nil, "symptom keyword to remove (repeatable)")
	return cmd
}
