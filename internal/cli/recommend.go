package cli

import (
	"fmt"

	"library-assistant-be/internal/constant"

	"github.com/spf13/cobra"
)

var (
	recommendUser  int
	recommendLimit int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank the catalogue by a user's reading preferences",
	Example: `  librarian recommend --user 4
  librarian recommend --user 4 --limit 20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if recommendLimit < constant.MinBookLimit || recommendLimit > constant.MaxBookLimit {
			return fmt.Errorf("--limit must be between %d and %d", constant.MinBookLimit, constant.MaxBookLimit)
		}
		res, err := container.RecommendationService.Recommend(cmd.Context(), userFlag(recommendUser), recommendLimit)
		if err != nil {
			return fmt.Errorf("recommend: %w", err)
		}
		newPrinter(cmd.OutOrStdout()).recommendations(res)
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendUser, "user", "u", 0, "user id whose preferences rank the books")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 10, "number of books")
}
