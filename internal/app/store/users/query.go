// internal/app/store/users/query.go
package userstore

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/paging"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// searchFields is the fixed set of fields a free-text term is matched
// against, case-insensitively, as a substring.
var searchFields = []string{
	"first_name",
	"last_name",
	"username",
	"id_number",
	"id_type",
	"gender",
	"address",
	"contact1",
	"contact2",
	"membership_id",
	"status",
}

// SearchParams is the explicit query request shape. Unset dates mean no
// range constraint; zero Page/PageSize select the defaults.
type SearchParams struct {
	Term      string
	StartDate time.Time
	EndDate   time.Time
	Page      int
	PageSize  int
}

// SearchFilter builds the immutable bson filter for params. It is a pure
// function of its input so it can be tested without a live store.
//
// The term is ORed across searchFields; if it also parses as a date
// (YYYY-MM-DD), an exact created_at match joins the OR. A creation-date
// range applies only when both bounds are set and start <= end, matching
// inclusively.
func SearchFilter(params SearchParams) bson.M {
	filter := bson.M{}

	if params.Term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(params.Term), Options: "i"}
		or := make([]bson.M, 0, len(searchFields)+1)
		for _, f := range searchFields {
			or = append(or, bson.M{f: re})
		}
		if d, err := time.Parse("2006-01-02", params.Term); err == nil {
			or = append(or, bson.M{"created_at": d})
		}
		filter["$or"] = or
	}

	if !params.StartDate.IsZero() && !params.EndDate.IsZero() && !params.StartDate.After(params.EndDate) {
		filter["created_at"] = bson.M{
			"$gte": params.StartDate,
			"$lte": params.EndDate,
		}
	}

	return filter
}

// SearchResult carries one page of matches plus the totals callers need to
// render pagination without a second round trip.
type SearchResult struct {
	Items     []models.User `json:"items"`
	Total     int64         `json:"total"`
	Page      int           `json:"page"`
	PageCount int           `json:"page_count"`
}

// Search runs the composed filter with newest-first ordering and page
// slicing. Invalid page/pageSize fail with paging.ErrInvalidArgument
// before the store is touched; an out-of-range page returns an empty
// item set, not an error.
func (s *Store) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	pg, err := paging.New(params.Page, params.PageSize)
	if err != nil {
		return nil, err
	}

	filter := SearchFilter(params)

	total, err := s.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	find := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(pg.Skip()).
		SetLimit(pg.Limit())

	items, err := s.Find(ctx, filter, find)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.User{}
	}

	return &SearchResult{
		Items:     items,
		Total:     total,
		Page:      pg.Page,
		PageCount: pg.PageCount(total),
	}, nil
}
