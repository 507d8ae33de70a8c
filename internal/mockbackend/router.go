// Package mockbackend is an in-memory implementation of the ordering API's
// canonical contract. It backs local development and the integration tests;
// the production backend lives elsewhere.
package mockbackend

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"aquaflow-client/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const userCtxKey = "mockbackend.user"

// NewRouter wires the full API surface over a store.
func NewRouter(store *Store, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.POST("/login", loginHandler(store))
	router.POST("/register", registerHandler(store))
	router.GET("/gallons", func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Gallons())
	})

	router.POST("/forgot-password", forgotPasswordHandler(store, logger))
	router.POST("/resend-reset-code", forgotPasswordHandler(store, logger))
	router.POST("/verify-reset-code", verifyResetCodeHandler(store))
	router.POST("/reset-password", resetPasswordHandler(store))

	authed := router.Group("/", authMiddleware(store))
	authed.GET("/profile", profileHandler)
	authed.PUT("/profile", updateProfileHandler(store))
	authed.GET("/addresses", listAddressesHandler(store))
	authed.PUT("/change-password", changePasswordHandler(store))
	authed.POST("/logout", logoutHandler(store))

	authed.GET("/cartItems", listCartHandler(store))
	authed.POST("/cartItems", addToCartHandler(store))
	authed.DELETE("/cartItems", removeFromCartHandler(store))
	authed.PUT("/cartItems/increase", changeQuantityHandler(store, store.Increase))
	authed.PUT("/cartItems/decrease", changeQuantityHandler(store, store.Decrease))

	admin := authed.Group("/admin", requireRole(domain.RoleAdmin))
	admin.GET("/orders", listOrdersHandler(store))
	admin.PUT("/orders/:id/update-stats", updateOrderStatusHandler(store))

	return router
}

func authMiddleware(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}
		user, err := store.UserByToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}
		c.Set(userCtxKey, user)
		c.Next()
	}
}

func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	return c.MustGet(userCtxKey).(domain.User)
}

func loginHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Identifier string `json:"identifier" binding:"required"`
			Password   string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "identifier and password are required"})
			return
		}
		user, token, err := store.Authenticate(req.Identifier, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}

func registerHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			FirstName string `json:"first_name" binding:"required"`
			LastName  string `json:"last_name" binding:"required"`
			Email     string `json:"email" binding:"required"`
			ContactNo string `json:"contact_no"`
			Username  string `json:"username" binding:"required"`
			Password  string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "missing required fields"})
			return
		}
		_, err := store.Register(domain.User{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			ContactNo: req.ContactNo,
			Username:  req.Username,
		}, req.Password)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully"})
	}
}

func profileHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

func updateProfileHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Email     string `json:"email"`
			ContactNo string `json:"contact_no"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid profile payload"})
			return
		}
		user, err := store.UpdateProfile(currentUser(c).ID, req.FirstName, req.LastName, req.Email, req.ContactNo)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "account not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
	}
}

func changePasswordHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OldPassword     string `json:"old_password" binding:"required"`
			NewPassword     string `json:"new_password" binding:"required"`
			ConfirmPassword string `json:"confirm_password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "missing required fields"})
			return
		}
		if req.NewPassword != req.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"message": "passwords do not match"})
			return
		}
		user := currentUser(c)
		if !store.CheckPassword(user.ID, req.OldPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "old password is incorrect"})
			return
		}
		if err := store.SetPassword(user.ID, req.NewPassword); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to change password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
	}
}

func logoutHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			store.RevokeToken(token)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

func forgotPasswordHandler(store *Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
			return
		}
		// No mail here; the code lands in the log.
		store.StoreResetCode(req.Email, "424242")
		logger.Info("password reset code issued", "email", req.Email, "code", "424242")
		c.JSON(http.StatusOK, gin.H{"message": "Reset code sent to your email"})
	}
}

func verifyResetCodeHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required"`
			Code  string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email and code are required"})
			return
		}
		if !store.VerifyResetCode(req.Email, req.Code) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid reset code"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Code verified"})
	}
}

func resetPasswordHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
			Code     string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email, password and code are required"})
			return
		}
		if err := store.ResetPassword(req.Email, req.Password, req.Code); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
	}
}

func listAddressesHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"addresses": store.Addresses(currentUser(c).ID)})
	}
}

func listCartHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "cart_items": store.Cart(currentUser(c).ID)})
	}
}

func addToCartHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			GallonID int64 `json:"gallon_id" binding:"required"`
			Quantity int   `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "gallon_id is required"})
			return
		}
		if req.Quantity <= 0 {
			req.Quantity = 1
		}
		lines, err := store.AddToCart(currentUser(c).ID, req.GallonID, req.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "gallon not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart_items": lines})
	}
}

func removeFromCartHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CartItemIDs []int64 `json:"cart_item_ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "cart_item_ids is required"})
			return
		}
		lines := store.RemoveLines(currentUser(c).ID, req.CartItemIDs)
		c.JSON(http.StatusOK, gin.H{"cart_items": lines})
	}
}

func changeQuantityHandler(store *Store, change func(userID, lineID int64) ([]domain.CartLine, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CartItemID int64 `json:"cart_item_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "cart_item_id is required"})
			return
		}
		lines, err := change(currentUser(c).ID, req.CartItemID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "cart item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart_items": lines})
	}
}

func listOrdersHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": store.Orders()})
	}
}

func updateOrderStatusHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
			return
		}
		var req struct {
			ID     int64  `json:"id"`
			Action string `json:"action" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "action is required"})
			return
		}

		message, err := store.ApplyOrderAction(orderID, req.Action)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		case errors.Is(err, errIllegalAction):
			c.JSON(http.StatusBadRequest, gin.H{"message": "action not allowed for current status"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update order"})
		default:
			c.JSON(http.StatusOK, gin.H{"message": message})
		}
	}
}
