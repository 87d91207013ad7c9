package handlers

import (
	"net/http"

	"github.com/Dosada05/clubscore/rating"
	"github.com/Dosada05/clubscore/services"
)

type RatingHandler struct {
	ratingService services.RatingService
}

func NewRatingHandler(rs services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: rs}
}

// Simulate godoc
// @Summary      Preview the rating swing of a match
// @Tags         ratings
// @Produce      json
// @Param        my_rating        query  int  true   "Own rating"
// @Param        opponent_rating  query  int  true   "Opponent rating"
// @Param        match_count      query  int  false  "Matches played (default 30)"
// @Success      200  {object}  rating.Simulation
// @Failure      400  {object}  map[string]string
// @Router       /ratings/simulate [get]
func (h *RatingHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	my, err := requireQueryInt(r, "my_rating")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	opponent, err := requireQueryInt(r, "opponent_rating")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	count, err := queryInt(r, "match_count", rating.DefaultSimulationMatchCount)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sim, err := h.ratingService.Simulate(my, opponent, count)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"simulation": sim}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Tiers godoc
// @Summary      Tier table
// @Tags         ratings
// @Produce      json
// @Success      200  {array}  rating.TierInfo
// @Router       /ratings/tiers [get]
func (h *RatingHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tiers": h.ratingService.Tiers()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Progress godoc
// @Summary      Progress towards the next tier
// @Tags         ratings
// @Produce      json
// @Param        rating  query  int  true  "Current rating"
// @Success      200  {object}  rating.TierProgress
// @Failure      400  {object}  map[string]string
// @Router       /ratings/progress [get]
func (h *RatingHandler) Progress(w http.ResponseWriter, r *http.Request) {
	value, err := requireQueryInt(r, "rating")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	progress, err := h.ratingService.Progress(value)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"progress": progress}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlayerRating godoc
// @Summary      Stored rating of a player with tier and recent history
// @Tags         ratings
// @Produce      json
// @Param        playerID  path  string  true  "Player ID"
// @Success      200  {object}  services.PlayerRating
// @Failure      404  {object}  map[string]string
// @Router       /players/{playerID}/rating [get]
func (h *RatingHandler) PlayerRating(w http.ResponseWriter, r *http.Request) {
	playerID, err := urlParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pr, err := h.ratingService.GetPlayerRating(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player_rating": pr}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
