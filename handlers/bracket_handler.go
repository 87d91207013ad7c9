package handlers

import (
	"net/http"

	"github.com/Dosada05/clubscore/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// Generate godoc
// @Summary      Generate and store the bracket of a draft tournament
// @Tags         brackets
// @Produce      json
// @Security     BearerAuth
// @Param        tournamentID  path  string  true  "Tournament ID"
// @Success      201  {object}  services.BracketView
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GenerateAndSaveBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary      Stored bracket with round names and standings
// @Tags         brackets
// @Produce      json
// @Param        tournamentID  path  string  true  "Tournament ID"
// @Success      200  {object}  services.BracketView
// @Failure      404  {object}  map[string]string
// @Router       /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResult godoc
// @Summary      Record a match result, advance the winner and update ratings
// @Tags         brackets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tournamentID  path  string                     true  "Tournament ID"
// @Param        matchID       path  string                     true  "Match ID"
// @Param        input         body  services.MatchResultInput  true  "Result"
// @Success      200  {object}  services.MatchResultOutcome
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /tournaments/{tournamentID}/matches/{matchID}/result [post]
func (h *BracketHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := urlParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.MatchID = matchID

	outcome, err := h.bracketService.RecordMatchResult(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, outcome, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
