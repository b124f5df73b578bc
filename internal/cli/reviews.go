package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacentio/moviereview/review"
)

// ReviewOptions holds flags for create and update.
type ReviewOptions struct {
	*RootOptions
	Description string
	Rating      uint8
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a review",
		Long: `Create a review of <title> written by --author.

The rating must be between 1 and 5. Titles are limited to 20 bytes and
descriptions to 50 bytes.

Example:
  moviereview create Dune --description "Great sci-fi" --rating 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "create review", func(ctx context.Context, s *review.Store, author review.Author) (any, error) {
				r, err := s.Create(ctx, author, args[0], opts.Description, opts.Rating)
				if err != nil {
					return nil, err
				}
				return newReviewView(r), nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "review text")
	cmd.Flags().Uint8VarP(&opts.Rating, "rating", "r", 0, "rating from 1 to 5")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <title>",
		Short: "Rewrite the description and rating of a review",
		Long: `Rewrite the description and rating of the review of <title> written by --author.

Unlike create, update does not check the rating range or description length.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "update review", func(ctx context.Context, s *review.Store, author review.Author) (any, error) {
				r, err := s.Update(ctx, author, args[0], opts.Description, opts.Rating)
				if err != nil {
					return nil, err
				}
				return newReviewView(r), nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "review text")
	cmd.Flags().Uint8VarP(&opts.Rating, "rating", "r", 0, "rating")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <title>",
		Short:         "Delete a review and release its storage",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "delete review", func(ctx context.Context, s *review.Store, author review.Author) (any, error) {
				if err := s.Delete(ctx, author, args[0]); err != nil {
					return nil, err
				}
				return fmt.Sprintf("Movie review for %s deleted", args[0]), nil
			})
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <title>",
		Short:         "Show a review",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "get review", func(ctx context.Context, s *review.Store, author review.Author) (any, error) {
				r, err := s.Get(ctx, author, args[0])
				if err != nil {
					return nil, err
				}
				return newReviewView(r), nil
			})
		},
	}
}

// ReservedView is the printed form of an author's reservation.
type ReservedView struct {
	Author   string `json:"author"`
	Reserved int64  `json:"reserved"`
}

func (v ReservedView) String() string {
	return fmt.Sprintf("%s reserves %d bytes", v.Author, v.Reserved)
}

// NewReservedCommand creates the reserved command.
func NewReservedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "reserved",
		Short:         "Show the bytes reserved by the author's reviews",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "get reserved", func(ctx context.Context, s *review.Store, author review.Author) (any, error) {
				n, err := s.Reserved(ctx, author)
				if err != nil {
					return nil, err
				}
				return ReservedView{Author: author.String(), Reserved: n}, nil
			})
		},
	}
}

// withStore opens the configured store, runs fn and prints its result.
func withStore(cmd *cobra.Command, opts *RootOptions, op string, fn func(context.Context, *review.Store, review.Author) (any, error)) error {
	formatter := &OutputFormatter{
		Format: opts.Format,
		Writer: cmd.OutOrStdout(),
	}

	author, err := opts.author()
	if err != nil {
		return formatter.Fail(op, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, closeFn, err := openStore(ctx, opts.Settings, opts.logger(cmd.ErrOrStderr()))
	if err != nil {
		return formatter.Fail(op, WrapExitError(ExitCommandError, "open backend", err))
	}
	defer closeFn()

	result, err := fn(ctx, s, author)
	if err != nil {
		return formatter.Fail(op, err)
	}
	return formatter.Success(result)
}
