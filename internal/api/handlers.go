package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Veraticus/spice-sms/internal/category"
	"github.com/Veraticus/spice-sms/internal/model"
)

const defaultSuggestions = 3

type parseRequest struct {
	Text   string `json:"text"`
	Sender string `json:"sender"`
	Source string `json:"source"`
	Submit bool   `json:"submit"`
}

type parseResponse struct {
	Extraction  *model.ExtractionResult     `json:"extraction,omitempty"`
	Transaction *model.FormattedTransaction `json:"transaction,omitempty"`
	PendingID   string                      `json:"pending_id,omitempty"`
	Found       bool                        `json:"found"`
	Duplicate   bool                        `json:"duplicate,omitempty"`
}

type ruleRequest struct {
	Pattern     string                `json:"pattern"`
	Type        model.TransactionType `json:"type"`
	Category    string                `json:"category"`
	AccountID   string                `json:"account_id"`
	BankName    string                `json:"bank_name"`
	Description string                `json:"description"`
	IsRegex     bool                  `json:"is_regex"`
}

type learnRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

type mappingRequest struct {
	Bank      string `json:"bank"`
	AccountID string `json:"account_id"`
}

type confirmRequest struct {
	Category string `json:"category"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"rules":   len(s.detector.Rules.List()),
		"learned": len(s.detector.Classifier.Model().Mappings),
		"pending": s.detector.Pending != nil,
	})
}

func (s *Server) parse(c *fiber.Ctx) error {
	var req parseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}

	source := model.MessageSource(req.Source)
	if source == "" {
		source = model.SourceNotification
	}
	det := s.detector.Detect(model.RawMessage{
		ReceivedAt: time.Now(),
		Text:       req.Text,
		Source:     source,
		Sender:     req.Sender,
	})

	resp := parseResponse{
		Extraction:  det.Extraction,
		Transaction: det.Transaction,
		Found:       det.Found(),
	}
	if req.Submit {
		if err := det.Queueable(); err != nil {
			return err
		}
	}
	if !req.Submit || !det.Found() {
		return c.JSON(resp)
	}

	if s.detector.Pending == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "pending queue unavailable")
	}
	item, added, err := s.detector.Pending.Enqueue(c.UserContext(), det.Transaction)
	if err != nil {
		return err
	}
	resp.PendingID = item.ID
	resp.Duplicate = !added
	if added {
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
	return c.JSON(resp)
}

func (s *Server) listRules(c *fiber.Ctx) error {
	return c.JSON(s.detector.Rules.List())
}

func (s *Server) addRule(c *fiber.Ctx) error {
	var req ruleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	rule, err := s.detector.Rules.Add(c.UserContext(), model.RuleFields{
		Pattern:     req.Pattern,
		Type:        req.Type,
		Category:    req.Category,
		AccountID:   req.AccountID,
		BankName:    req.BankName,
		Description: req.Description,
		IsRegex:     req.IsRegex,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (s *Server) deleteRule(c *fiber.Ctx) error {
	if err := s.detector.Rules.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listCategories(c *fiber.Ctx) error {
	return c.JSON(category.Names())
}

func (s *Server) suggestCategories(c *fiber.Ctx) error {
	description := c.Query("description")
	if strings.TrimSpace(description) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "description is required")
	}
	n := c.QueryInt("n", defaultSuggestions)
	if n <= 0 {
		n = defaultSuggestions
	}
	return c.JSON(fiber.Map{
		"prediction":  s.detector.Classifier.Predict(description, 0),
		"suggestions": s.detector.Classifier.Suggest(description, n),
	})
}

func (s *Server) learnCategory(c *fiber.Ctx) error {
	var req learnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if err := s.detector.Classifier.Learn(c.UserContext(), req.Description, req.Category); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listMappings(c *fiber.Ctx) error {
	return c.JSON(s.detector.Mappings.All())
}

func (s *Server) rememberMapping(c *fiber.Ctx) error {
	var req mappingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if err := s.detector.Mappings.Remember(c.UserContext(), req.Bank, req.AccountID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) forgetMapping(c *fiber.Ctx) error {
	if err := s.detector.Mappings.Forget(c.UserContext(), c.Params("bank")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listPending(c *fiber.Ctx) error {
	if s.detector.Pending == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "pending queue unavailable")
	}
	items, err := s.detector.Pending.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (s *Server) confirmPending(c *fiber.Ctx) error {
	if s.detector.Pending == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "pending queue unavailable")
	}
	var req confirmRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
		}
	}
	item, err := s.detector.Pending.Confirm(c.UserContext(), c.Params("id"), req.Category)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *Server) dismissPending(c *fiber.Ctx) error {
	if s.detector.Pending == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "pending queue unavailable")
	}
	if err := s.detector.Pending.Dismiss(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
