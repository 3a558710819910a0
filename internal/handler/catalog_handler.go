package handler

import (
	"guide-exam/internal/dto"
	"guide-exam/internal/middleware"
	"guide-exam/internal/service"
	"guide-exam/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves subjects, papers, regions and the region preference.
type CatalogHandler struct {
	bank        service.QuestionBank
	preferences service.PreferenceService
	validator   *validation.Validator
}

func NewCatalogHandler(bank service.QuestionBank, preferences service.PreferenceService, validator *validation.Validator) *CatalogHandler {
	return &CatalogHandler{bank: bank, preferences: preferences, validator: validator}
}

// ListSubjects godoc
// @Summary List exam subjects
// @Description Returns every subject with the number of questions in the bank.
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.SubjectResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(c *fiber.Ctx) error {
	subjects, err := h.bank.Subjects(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(subjects)
}

// ListPapers godoc
// @Summary List mock exam papers
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.PaperResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /papers [get]
func (h *CatalogHandler) ListPapers(c *fiber.Ctx) error {
	papers, err := h.bank.Papers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(papers)
}

// ListRegions godoc
// @Summary List regions for regional interview practice
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.RegionResponse
// @Router /regions [get]
func (h *CatalogHandler) ListRegions(c *fiber.Ctx) error {
	return c.JSON(h.preferences.Regions(c.UserContext()))
}

// GetRegionPreference godoc
// @Summary Get the selected region
// @Description Falls back to the default region when nothing was selected.
// @Tags preferences
// @Produce json
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Success 200 {object} dto.RegionPreferenceResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /preferences/region [get]
func (h *CatalogHandler) GetRegionPreference(c *fiber.Ctx) error {
	owner, err := middleware.ResolveOwner(c)
	if err != nil {
		return err
	}
	resp, err := h.preferences.SelectedRegion(c.UserContext(), owner)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SetRegionPreference godoc
// @Summary Select a region
// @Tags preferences
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Param request body dto.RegionPreferenceRequest true "Region"
// @Success 200 {object} dto.RegionPreferenceResponse
// @Failure 400 {object} middleware.ErrorResponse "Unknown region"
// @Router /preferences/region [put]
func (h *CatalogHandler) SetRegionPreference(c *fiber.Ctx) error {
	owner, err := middleware.ResolveOwner(c)
	if err != nil {
		return err
	}
	var req dto.RegionPreferenceRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.preferences.SelectRegion(c.UserContext(), owner, req.RegionID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
