package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/franckalain/nutritiontracker/internal/models"
	"github.com/franckalain/nutritiontracker/internal/nutrition"
	"github.com/franckalain/nutritiontracker/internal/tracker"
)

var endpoints = []string{
	"POST /register - Register a new user",
	"POST /log_meals - Log a meal",
	"GET /meals/<user> - Get user's meal history",
	"GET /meals/<user>/<date> - Get user's meals for specific date",
	"GET /status/<user> - Get user's nutrition status",
	"POST /webhook - WhatsApp-like webhook for meal logging",
	"GET /food_db - Get available food items",
	"GET /ws - Live feed of logged meals",
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Nutrition Tracker API is running",
		"endpoints": endpoints,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleRegister(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	user, err := s.svc.Register(c.Request.Context(), raw)
	var ve *tracker.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": ve.Details})
	case err != nil:
		s.writeError(c, err)
	default:
		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully",
			"user":    user,
		})
	}
}

type logMealRequest struct {
	User  *string  `json:"user" binding:"required"`
	Meal  *string  `json:"meal" binding:"required"`
	Items []string `json:"items" binding:"required"`
}

func (s *Server) handleLogMeal(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	var req logMealRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	meal, err := s.svc.LogMeal(c.Request.Context(), *req.User, *req.Meal, req.Items)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Meal logged successfully",
		"meal":    meal,
	})
}

// bindErrorMessage turns a binding failure of logMealRequest into the message
// reported to the client.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return strings.ToLower(verrs[0].Field()) + " is required"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && strings.HasPrefix(typeErr.Field, "items") {
		return "Items must be a non-empty array"
	}
	return "No data provided"
}

func (s *Server) handleUserMeals(c *gin.Context) {
	user := c.Param("user")
	meals, err := s.svc.Meals(c.Request.Context(), user)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"total_meals": len(meals),
		"meals":       nonNil(meals),
	})
}

func (s *Server) handleUserMealsByDate(c *gin.Context) {
	user, date := c.Param("user"), c.Param("date")
	meals, err := s.svc.MealsOn(c.Request.Context(), user, date)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"date":        date,
		"total_meals": len(meals),
		"meals":       nonNil(meals),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	st, err := s.svc.Status(c.Request.Context(), c.Param("user"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statusBody(st))
}

func statusBody(st *tracker.Status) gin.H {
	total, today := st.Total.Rounded(), st.Today.Rounded()
	return gin.H{
		"user": st.User,
		"bmr":  st.BMR,
		"goal": st.Goal,
		"total_nutrition_consumed": gin.H{
			"calories": total.Calories,
			"protein":  total.Protein,
			"carbs":    total.Carbs,
			"fiber":    total.Fiber,
		},
		"today_nutrition": gin.H{
			"date":     st.Date,
			"calories": today.Calories,
			"protein":  today.Protein,
			"carbs":    today.Carbs,
			"fiber":    today.Fiber,
		},
		"total_meals_logged": st.TotalMeals,
		"meals_today":        st.MealsToday,
	}
}

type webhookRequest struct {
	Message *string `json:"message"`
	User    string  `json:"user"`
}

func (s *Server) handleWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	res, err := s.svc.LogMessage(c.Request.Context(), req.User, *req.Message)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Meal logged successfully for " + res.User,
		"parsed":  parsedBody(res),
	})
}

func parsedBody(res *tracker.MessageResult) gin.H {
	return gin.H{
		"meal_type":  res.Parsed.MealType,
		"food_items": res.Meal.FoodItems,
		"nutrition":  res.Meal.Nutrition,
	}
}

func (s *Server) handleFoodDB(c *gin.Context) {
	foods := s.svc.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"message":     "Available food items in database",
		"total_items": len(foods),
		"food_items":  foods,
	})
}

// writeError maps tracker errors onto status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		ve *tracker.ValidationError
		fe *nutrition.FormatError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(ve.Details, "; ")})
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid message format. Use: '" + fe.Template + "'",
			"example": fe.Example,
		})
	case errors.Is(err, tracker.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, tracker.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	default:
		s.log.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func nonNil(meals []*models.Meal) []*models.Meal {
	if meals == nil {
		return []*models.Meal{}
	}
	return meals
}
