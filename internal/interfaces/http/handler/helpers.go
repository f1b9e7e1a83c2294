package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

func (r AddressRequest) toValueObject() (valueobject.Address, error) {
	return valueobject.NewAddress(r.FullName, r.Line1, r.Line2, r.City, r.PostalCode, r.Country, r.Phone)
}

// bindFilter parses common pagination query parameters into a filter
func bindFilter(c *gin.Context) (shared.Filter, error) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}, nil
}

// parseIDParam binds and validates the :id path parameter
func parseIDParam(c *gin.Context) (dto.IDRequest, error) {
	var req dto.IDRequest
	err := c.ShouldBindUri(&req)
	return req, err
}
