package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jcadam/vaultkey/pkg/contacts"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type addOptions struct {
	first, last, nickname      string
	company, position, dept    string
	website, address, birthday string
	notes                      string
	emails, phones             []string
	fields, secrets            []string
}

func newAddCmd(a *app) *cobra.Command {
	var opts addOptions
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Long: `Add a contact from flags, or interactively when --first is not given.

Emails and phones take an optional label prefix: --email Home:me@example.com.
Custom fields are Label=value; --secret marks them sensitive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.first == "" {
				if err := promptContact(cmd.InOrStdin(), cmd.OutOrStdout(), &opts); err != nil {
					return err
				}
			}
			c, err := opts.contact()
			if err != nil {
				return err
			}
			c.Normalize()
			if err := c.Validate(); err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.Put(cmd.Context(), c); err != nil {
				return fmt.Errorf("adding contact: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", c.DisplayName())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.first, "first", "", "First name (required)")
	f.StringVar(&opts.last, "last", "", "Last name")
	f.StringVar(&opts.nickname, "nickname", "", "Nickname")
	f.StringVar(&opts.company, "company", "", "Company")
	f.StringVar(&opts.position, "position", "", "Job title")
	f.StringVar(&opts.dept, "department", "", "Department")
	f.StringVar(&opts.website, "website", "", "Website")
	f.StringVar(&opts.address, "address", "", "Postal address")
	f.StringVar(&opts.birthday, "birthday", "", "Birthday (YYYY-MM-DD)")
	f.StringVar(&opts.notes, "notes", "", "Notes")
	f.StringArrayVar(&opts.emails, "email", nil, "Email, optionally Label:address (repeatable)")
	f.StringArrayVar(&opts.phones, "phone", nil, "Phone, optionally Label:number (repeatable)")
	f.StringArrayVar(&opts.fields, "field", nil, "Custom field Label=value (repeatable)")
	f.StringArrayVar(&opts.secrets, "secret", nil, "Sensitive custom field Label=value (repeatable)")
	return cmd
}

func (o addOptions) contact() (contacts.Contact, error) {
	c := contacts.Contact{
		FirstName:  o.first,
		LastName:   o.last,
		Nickname:   o.nickname,
		Company:    o.company,
		Position:   o.position,
		Department: o.dept,
		Website:    o.website,
		Address:    o.address,
		Birthday:   o.birthday,
		Notes:      o.notes,
	}
	for _, e := range o.emails {
		c.Emails = append(c.Emails, parseLabeled(e, contacts.LabelWork))
	}
	for _, p := range o.phones {
		c.Phones = append(c.Phones, parseLabeled(p, contacts.LabelMobile))
	}
	for _, list := range []struct {
		raw       []string
		sensitive bool
	}{{o.fields, false}, {o.secrets, true}} {
		for _, raw := range list.raw {
			label, value, ok := strings.Cut(raw, "=")
			if !ok || strings.TrimSpace(label) == "" {
				return c, fmt.Errorf("custom field %q must be Label=value", raw)
			}
			c.CustomFields = append(c.CustomFields, contacts.CustomField{
				Label:       strings.TrimSpace(label),
				Value:       strings.TrimSpace(value),
				IsSensitive: list.sensitive,
			})
		}
	}
	return c, nil
}

// parseLabeled splits "Label:value". Values without a plausible label
// prefix get def.
func parseLabeled(raw string, def contacts.Label) contacts.LabeledValue {
	label, value, ok := strings.Cut(raw, ":")
	if ok && label != "" && !strings.ContainsAny(label, "@+ ()") {
		return contacts.LabeledValue{Label: contacts.Label(label), Value: value}
	}
	return contacts.LabeledValue{Label: def, Value: raw}
}

// promptContact asks for the common attributes one line at a time.
func promptContact(in io.Reader, out io.Writer, o *addOptions) error {
	scanner := bufio.NewScanner(in)
	ask := func(prompt string) string {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	o.first = ask("First name (required): ")
	if o.first == "" {
		return errors.New("first name is required")
	}
	o.last = ask("Last name: ")
	if e := ask("Email: "); e != "" {
		o.emails = append(o.emails, e)
	}
	if p := ask("Phone: "); p != "" {
		o.phones = append(o.phones, p)
	}
	o.company = ask("Company: ")
	o.position = ask("Job title: ")
	o.notes = ask("Notes: ")
	return nil
}

const editHeader = "# Edit the contact and save. Empty the file to cancel.\n# id and createdAt cannot be changed.\n"

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <name|id>",
		Short: "Edit a contact in your editor",
		Long:  "Edit a contact as YAML in apps.editor ($VISUAL, $EDITOR or vi when unset). The saved file replaces the whole record.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orig, err := a.resolve(cmd.Context(), args)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(orig)
			if err != nil {
				return fmt.Errorf("encoding contact: %w", err)
			}
			before := append([]byte(editHeader), data...)

			f, err := os.CreateTemp("", "vk-edit-*.yaml")
			if err != nil {
				return fmt.Errorf("creating edit file: %w", err)
			}
			path := f.Name()
			defer os.Remove(path)
			if _, err := f.Write(before); err != nil {
				f.Close()
				return fmt.Errorf("writing edit file: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing edit file: %w", err)
			}

			if err := a.handoff().Edit(path); err != nil {
				return err
			}
			after, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading edit file: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(bytes.TrimSpace(stripComments(after))) == 0 {
				fmt.Fprintln(out, "Edit cancelled.")
				return nil
			}
			if bytes.Equal(before, after) {
				fmt.Fprintln(out, "No changes.")
				return nil
			}

			var updated contacts.Contact
			if err := yaml.Unmarshal(after, &updated); err != nil {
				return fmt.Errorf("parsing edited contact: %w", err)
			}
			updated.ID = orig.ID
			updated.CreatedAt = orig.CreatedAt
			updated.Normalize()
			if err := updated.Validate(); err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.Put(cmd.Context(), updated); err != nil {
				return fmt.Errorf("saving contact: %w", err)
			}
			fmt.Fprintf(out, "Updated %s\n", updated.DisplayName())
			return nil
		},
	}
}

// stripComments drops whole-line YAML comments.
func stripComments(data []byte) []byte {
	var out [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimSpace(line), []byte("#")) {
			continue
		}
		out = append(out, line)
	}
	return bytes.Join(out, []byte("\n"))
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name|id>",
		Aliases: []string{"rm"},
		Short:   "Remove a contact",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.resolve(cmd.Context(), args)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), c.ID); err != nil {
				return fmt.Errorf("removing contact: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", c.DisplayName())
			return nil
		},
	}
}
