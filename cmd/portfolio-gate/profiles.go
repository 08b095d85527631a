package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/portfolio-gate/gate"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

var profilesJSON bool

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect visitor profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every profile in sign-up order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		g, err := gate.New(gate.Config{DB: db, App: cfg, Logger: logger})
		if err != nil {
			return err
		}
		profiles, err := g.Store().ListProfiles(cmd.Context())
		if err != nil {
			logger.Error("failed to list profiles", "error", err)
			return err
		}
		if profilesJSON {
			return writeProfilesJSON(cmd.OutOrStdout(), profiles)
		}
		return writeProfiles(cmd.OutOrStdout(), profiles)
	},
}

func init() {
	profilesListCmd.Flags().BoolVar(&profilesJSON, "json", false, "Print JSON instead of a table")
	profilesCmd.AddCommand(profilesListCmd)
}

func writeProfiles(w io.Writer, profiles []*domain.Profile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tVERIFIED\tLOGINS\tLAST LOGIN")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\t%s\n",
			p.ID, p.DisplayName, p.Email, p.IsEmailVerified, p.LoginCount, p.LastLogin.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

type profileRow struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	Email           string    `json:"email"`
	IsEmailVerified bool      `json:"is_email_verified"`
	LoginCount      int       `json:"login_count"`
	LastLogin       time.Time `json:"last_login"`
	CreatedAt       time.Time `json:"created_at"`
}

func writeProfilesJSON(w io.Writer, profiles []*domain.Profile) error {
	rows := make([]profileRow, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, profileRow{
			ID:              p.ID.String(),
			DisplayName:     p.DisplayName,
			Email:           p.Email,
			IsEmailVerified: p.IsEmailVerified,
			LoginCount:      p.LoginCount,
			LastLogin:       p.LastLogin,
			CreatedAt:       p.CreatedAt,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
