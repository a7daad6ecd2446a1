package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
	"github.com/preston-bernstein/ntrp-rating-service/internal/extract"
)

func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run the page extractors on saved HTML",
	}
	cmd.AddCommand(newExtractRosterCommand())
	cmd.AddCommand(newExtractProfileCommand())
	return cmd
}

func newExtractRosterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roster <file>",
		Short: "Extract name and location from a roster player page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readPage(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, extract.ParseRosterPage(body))
		},
	}
}

// profileOutput flags whether the extracted rating is an estimated dynamic one.
type profileOutput struct {
	domain.ProfileAttributes
	Dynamic bool `json:"dynamic"`
}

func newExtractProfileCommand() *cobra.Command {
	var first, last string

	cmd := &cobra.Command{
		Use:   "profile <file>",
		Short: "Extract location and rating from a ratings profile page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if first == "" || last == "" {
				return errors.New("--first and --last are required")
			}
			body, err := readPage(args[0])
			if err != nil {
				return err
			}
			attrs := extract.ParseProfilePage(body, first, last)
			return writeJSON(cmd, profileOutput{
				ProfileAttributes: attrs,
				Dynamic:           extract.IsDynamicRating(attrs.Rating),
			})
		},
	}

	cmd.Flags().StringVar(&first, "first", "", "Player first name")
	cmd.Flags().StringVar(&last, "last", "", "Player last name")
	return cmd
}

func readPage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return string(data), nil
}
