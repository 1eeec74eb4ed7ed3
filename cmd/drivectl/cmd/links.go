package cmd

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/templui/drive/internal/repository"
	"github.com/templui/drive/internal/service"
)

func LinksCmd() *cobra.Command {
	links := &cobra.Command{
		Use:   "links",
		Short: "Maintain link shares",
	}

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete link shares that expired more than --older-than ago",
		RunE: func(c *cobra.Command, args []string) error {
			return withDB(c.Context(), func(database *sqlx.DB) error {
				// Pruning only touches link rows; access checks and storage are unused
				linkService := service.NewLinkService(repository.NewLinkShareRepository(database), nil, nil, nil, 0, 0)

				n, err := linkService.PruneExpired(c.Context(), olderThan)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "pruned %d expired link shares\n", n)
				return nil
			})
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "grace period after expiry")

	links.AddCommand(prune)
	return links
}
