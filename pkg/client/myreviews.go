package client

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

const myReviewsConcurrency = 4

// MyReviews is the caller's rental history together with the reviews they
// left on the rented tapes.
type MyReviews struct {
	Rentals []domain.Rental
	Reviews []domain.Review
	// Skipped counts tapes whose reviews could not be loaded.
	Skipped int
}

// Pending returns the returned rentals whose tape has no review yet.
func (m MyReviews) Pending() []domain.Rental {
	reviewed := make(map[string]bool, len(m.Reviews))
	for _, r := range m.Reviews {
		reviewed[r.VHS.ID.String()] = true
	}
	var pending []domain.Rental
	for _, r := range m.Rentals {
		if r.Returned() && !reviewed[r.VHS.ID.String()] {
			pending = append(pending, r)
		}
	}
	return pending
}

// MyReviews loads the rentals of the user with the given email and their
// reviews for each rented tape. Failing to load the rentals is an error; a
// failure for a single tape only skips that tape.
func (c *Client) MyReviews(ctx context.Context, email string) (*MyReviews, error) {
	if email == "" {
		return nil, fmt.Errorf("client.MyReviews: %w", Normalize(ErrNotAuthenticated))
	}

	rentals, err := c.ListRentals(ctx, PageQuery{Page: 0, Size: 1000, Sort: "rentalDate,desc"})
	if err != nil {
		return nil, fmt.Errorf("client.MyReviews: %w", err)
	}

	result := &MyReviews{}
	seen := make(map[string]bool)
	var tapes []string
	for _, r := range rentals.Content {
		if r.User.Email != email {
			continue
		}
		result.Rentals = append(result.Rentals, r)
		id := r.VHS.ID.String()
		if !seen[id] {
			seen[id] = true
			tapes = append(tapes, id)
		}
	}

	perTape := make([][]domain.Review, len(tapes))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(myReviewsConcurrency)
	for i, id := range tapes {
		g.Go(func() error {
			page, err := c.ListReviewsByVHS(gctx, id, PageQuery{Page: 0, Size: 100, Sort: "id,desc"})
			if err != nil {
				c.logger.Debug().Err(err).Str("vhs_id", id).Msg("skipping reviews for tape")
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				return nil
			}
			for _, rev := range page.Content {
				if rev.User.Email == email {
					perTape[i] = append(perTape[i], rev)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("client.MyReviews: %w", err)
	}

	for _, revs := range perTape {
		result.Reviews = append(result.Reviews, revs...)
	}
	return result, nil
}
