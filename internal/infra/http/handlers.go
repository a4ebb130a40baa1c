package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"registryd/internal/domain"
	"registryd/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type registryResponse struct {
	Authority   string `json:"authority"`
	TotalAgents uint64 `json:"total_agents"`
}

type agentResponse struct {
	ID          uint64   `json:"id"`
	Identity    string   `json:"identity,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	MetadataURI string   `json:"metadata_uri,omitempty"`
	Owner       string   `json:"owner"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
	IsActive    bool     `json:"is_active"`
}

type validationResponse struct {
	Identity   string `json:"identity"`
	Validator  string `json:"validator"`
	Day        uint32 `json:"day"`
	MerkleRoot string `json:"merkle_root"`
	Timestamp  int64  `json:"timestamp"`
}

type feedbackResponse struct {
	Identity  string `json:"identity"`
	Reviewer  string `json:"reviewer"`
	Rating    uint8  `json:"rating"`
	Tag       byte   `json:"tag"`
	Timestamp int64  `json:"timestamp"`
}

type anchorResponse struct {
	PlanID     string `json:"plan_id"`
	Root       string `json:"root"`
	AnchoredAt int64  `json:"anchored_at"`
	Authority  string `json:"authority"`
}

type registerAgentRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Skills      []string `json:"skills"`
}

type registerIdentityRequest struct {
	Identity    string `json:"identity"`
	MetadataURI string `json:"metadata_uri"`
}

type updateAgentRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Version     *string   `json:"version"`
	Skills      *[]string `json:"skills"`
	MetadataURI *string   `json:"metadata_uri"`
}

type postValidationRequest struct {
	Day        uint32 `json:"day"`
	MerkleRoot string `json:"merkle_root"`
}

type postFeedbackRequest struct {
	Rating uint8 `json:"rating"`
	Tag    byte  `json:"tag"`
}

type anchorRequest struct {
	PlanID string `json:"plan_id"`
	Root   string `json:"root"`
}

func (s *Server) handleInitializeRegistry(c *gin.Context) {
	caller, _, ok := s.requireCaller(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, caller) {
		return
	}
	if err := s.program.InitializeRegistry(c.Request.Context(), caller); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"authority": caller.String()})
}

func (s *Server) handleGetRegistry(c *gin.Context) {
	registry, err := s.program.GetRegistry(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, registryResponse{
		Authority:   registry.Authority.String(),
		TotalAgents: registry.TotalAgents,
	})
}

func (s *Server) handleRegisterAgent(c *gin.Context) {
	caller, body, ok := s.requireCaller(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, caller) {
		return
	}
	var req registerAgentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	id, err := s.program.RegisterAgent(c.Request.Context(), usecase.RegisterAgentRequest{
		Owner:       caller,
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
		Skills:      req.Skills,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleRegisterIdentity(c *gin.Context) {
	caller, body, ok := s.requireCaller(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, caller) {
		return
	}
	var req registerIdentityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	identity, err := domain.ParseIdentity(req.Identity)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_IDENTITY", "identity must be 32 hex-encoded bytes")
		return
	}
	err = s.program.RegisterIdentity(c.Request.Context(), usecase.RegisterIdentityRequest{
		Owner:       caller,
		Identity:    identity,
		MetadataURI: req.MetadataURI,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"identity": identity.String()})
}

func (s *Server) handleGetAgent(c *gin.Context) {
	ref, ok := parseAgentRef(c)
	if !ok {
		return
	}
	agent, err := s.program.GetAgent(c.Request.Context(), ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, agentJSON(agent))
}

func (s *Server) handleUpdateAgent(c *gin.Context) {
	caller, body, ok := s.requireCaller(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, caller) {
		return
	}
	ref, ok := parseAgentRef(c)
	if !ok {
		return
	}
	var req updateAgentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	patch := domain.AgentPatch{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
		Skills:      req.Skills,
		MetadataURI: req.MetadataURI,
	}
	if err := s.program.UpdateAgent(c.Request.Context(), caller, ref, patch); err != nil {
		writeError(c, err)
		return
	}
	agent, err := s.program.GetAgent(c.Request.Context(), ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, agentJSON(agent))
}

func (s *Server) handleDeactivateAgent(c *gin.Context) {
	caller, _, ok := s.requireCaller(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, caller) {
		return
	}
	ref, ok := parseAgentRef(c)
	if !ok {
		return
	}
	if err := s.program.DeactivateAgent(c.Request.Context(), caller, ref); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_active": false})
}

func (s *Server) handlePostValidation(c *gin.Context) {
	caller, body, ok := s.requireCaller(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, caller) {
		return
	}
	ref, ok := parseAgentRef(c)
	if !ok {
		return
	}
	var req postValidationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	root, err := domain.ParseRoot(req.MerkleRoot)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ROOT", "merkle_root must be 32 hex-encoded bytes")
		return
	}
	if err := s.program.PostValidation(c.Request.Context(), caller, ref, req.Day, root); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"day": req.Day, "validator": caller.String()})
}

func (s *Server) handleGetValidation(c *gin.Context) {
	ref, ok := parseAgentRef(c)
	if !ok {
		return
	}
	day, err := strconv.ParseUint(c.Param("day"), 10, 32)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_DAY", "day must be an unsigned integer")
		return
	}
	validation, err := s.program.GetValidation(c.Request.Context(), ref, uint32(day))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, validationResponse{
		Identity:   validation.Identity.String(),
		Validator:  validation.Validator.String(),
		Day:        validation.Day,
		MerkleRoot: validation.MerkleRoot.String(),
		Timestamp:  validation.Timestamp,
	})
}

func (s *Server) handlePostFeedback(c *gin.Context) {
	caller, body, ok := s.requireCaller(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, caller) {
		return
	}
	ref, ok := parseAgentRef(c)
	if !ok {
		return
	}
	var req postFeedbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.program.PostFeedback(c.Request.Context(), caller, ref, req.Rating, req.Tag); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviewer": caller.String(), "rating": req.Rating})
}

func (s *Server) handleGetFeedback(c *gin.Context) {
	ref, ok := parseAgentRef(c)
	if !ok {
		return
	}
	reviewer, err := domain.ParseIdentity(c.Param("reviewer"))
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_IDENTITY", "reviewer must be 32 hex-encoded bytes")
		return
	}
	feedback, err := s.program.GetFeedback(c.Request.Context(), ref, reviewer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedbackResponse{
		Identity:  feedback.Identity.String(),
		Reviewer:  feedback.Reviewer.String(),
		Rating:    feedback.Rating,
		Tag:       feedback.Tag,
		Timestamp: feedback.Timestamp,
	})
}

func (s *Server) handleAnchorMerkleRoot(c *gin.Context) {
	caller, body, ok := s.requireCaller(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, caller) {
		return
	}
	var req anchorRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if req.PlanID == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_PLAN_ID", "plan_id is required")
		return
	}
	root, err := domain.ParseRoot(req.Root)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ROOT", "root must be 32 hex-encoded bytes")
		return
	}
	if err := s.program.AnchorMerkleRoot(c.Request.Context(), caller, req.PlanID, root); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan_id": req.PlanID})
}

func (s *Server) handleGetMerkleAnchor(c *gin.Context) {
	anchor, err := s.program.GetMerkleAnchor(c.Request.Context(), c.Param("plan_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, anchorResponse{
		PlanID:     anchor.PlanID,
		Root:       anchor.Root.String(),
		AnchoredAt: anchor.AnchoredAt,
		Authority:  anchor.Authority.String(),
	})
}

func (s *Server) handleListEvents(c *gin.Context) {
	if s.journal == nil {
		c.JSON(http.StatusOK, gin.H{"entries": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": s.journal.Entries()})
}

// parseAgentRef reads the :ref path segment. A 64-char hex string is an
// identity; anything else must parse as a sequential id.
func parseAgentRef(c *gin.Context) (domain.AgentRef, bool) {
	raw := c.Param("ref")
	if len(raw) == 2*domain.IdentitySize {
		if identity, err := domain.ParseIdentity(raw); err == nil {
			return domain.RefByIdentity(identity), true
		}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REF", "ref must be an agent id or a hex identity")
		return domain.AgentRef{}, false
	}
	return domain.RefByID(id), true
}

func agentJSON(agent domain.Agent) agentResponse {
	resp := agentResponse{
		ID:          agent.ID,
		Name:        agent.Name,
		Description: agent.Description,
		Version:     agent.Version,
		Skills:      agent.Skills,
		MetadataURI: agent.MetadataURI,
		Owner:       agent.Owner.String(),
		CreatedAt:   agent.CreatedAt,
		UpdatedAt:   agent.UpdatedAt,
		IsActive:    agent.IsActive,
	}
	if !agent.Identity.IsZero() {
		resp.Identity = agent.Identity.String()
	}
	return resp
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrAlreadyInitialized):
		status, code = http.StatusConflict, "ALREADY_INITIALIZED"
	case errors.Is(err, domain.ErrDuplicateAgent):
		status, code = http.StatusConflict, "DUPLICATE_AGENT"
	case errors.Is(err, domain.ErrDuplicateValidation):
		status, code = http.StatusConflict, "DUPLICATE_VALIDATION"
	case errors.Is(err, domain.ErrDuplicateAnchor):
		status, code = http.StatusConflict, "DUPLICATE_ANCHOR"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusForbidden, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrPolicyDenied):
		status, code = http.StatusForbidden, "POLICY_DENIED"
	case errors.Is(err, domain.ErrMetadataTooLong):
		status, code = http.StatusBadRequest, "FIELD_TOO_LONG"
	case errors.Is(err, domain.ErrBadRating):
		status, code = http.StatusBadRequest, "BAD_RATING"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrBadDerivation):
		status, code = http.StatusInternalServerError, "BAD_DERIVATION"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}
