// internal/app/store/plans/services.go
package planstore

import (
	"context"
	"strconv"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/system/paging"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServicesForPlans flattens the service lists of the given plans into one
// deduplicated slice, preserving first-seen order.
func (s *Store) ServicesForPlans(ctx context.Context, planIDs []primitive.ObjectID) ([]models.PlanService, error) {
	plans, err := s.GetByIDs(ctx, planIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]bool)
	var svcIDs []primitive.ObjectID
	for _, p := range plans {
		for _, id := range p.ServiceIDs {
			if !seen[id] {
				seen[id] = true
				svcIDs = append(svcIDs, id)
			}
		}
	}
	return s.Services(ctx, svcIDs)
}

// ServicePage is one page of a user's covered services.
type ServicePage struct {
	Items     []models.PlanService `json:"items"`
	Total     int                  `json:"total"`
	Page      int                  `json:"page"`
	PageCount int                  `json:"pages"`
}

// FilterServices applies a case-insensitive substring match over service
// name, description, and area of cover; a term that parses as a number
// also matches the price exactly. The result is paged in memory because
// entitlement lists are small.
func FilterServices(services []models.PlanService, term string, p paging.Params) ServicePage {
	term = strings.ToLower(strings.TrimSpace(term))

	price, priceTerm := 0.0, false
	if term != "" {
		if v, err := strconv.ParseFloat(term, 64); err == nil {
			price, priceTerm = v, true
		}
	}

	matched := services
	if term != "" {
		matched = make([]models.PlanService, 0, len(services))
		for _, svc := range services {
			if strings.Contains(strings.ToLower(svc.Name), term) ||
				strings.Contains(strings.ToLower(svc.Description), term) ||
				strings.Contains(strings.ToLower(svc.AreaOfCover), term) ||
				(priceTerm && svc.Price == price) {
				matched = append(matched, svc)
			}
		}
	}

	total := len(matched)
	start := int(p.Skip())
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}

	items := matched[start:end]
	if items == nil {
		items = []models.PlanService{}
	}
	return ServicePage{
		Items:     items,
		Total:     total,
		Page:      p.Page,
		PageCount: p.PageCount(int64(total)),
	}
}
