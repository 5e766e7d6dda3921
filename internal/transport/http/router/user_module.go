package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"airport-ops/internal/domain"
	"airport-ops/internal/service"
	"airport-ops/internal/transport/http/ez"
	mdw "airport-ops/internal/transport/http/middleware"
)

// 登录/注册按 IP 额外限速
const (
	authRPS   = rate.Limit(2)
	authBurst = 10
	authIdle  = 10 * time.Minute
)

type registerIn struct {
	Name     string `json:"name"     binding:"required,airport_name"`
	Age      *int   `json:"age"      binding:"required,min=0,max=99"`
	Email    string `json:"email"    binding:"required,airport_email"`
	Mobile   string `json:"mobile"   binding:"required,airport_mobile"`
	Password string `json:"password" binding:"required,airport_password"`
}

func (in registerIn) request() service.RegisterUserRequest {
	age := 0
	if in.Age != nil {
		age = *in.Age
	}
	return service.RegisterUserRequest{Name: in.Name, Age: age, Email: in.Email, Mobile: in.Mobile, Password: in.Password}
}

type registerFrequentFlyerIn struct {
	registerIn
	FrequentFlyerNumber int `json:"frequentFlyerNumber" binding:"required,min=100000,max=999999"`
	Points              int `json:"points"              binding:"min=0,max=1000000"`
}

type registerManagerIn struct {
	registerIn
	StaffID string `json:"staffId" binding:"required"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginOut struct {
	Token string              `json:"token"`
	User  service.LoginResult `json:"user"`
}

type changePasswordIn struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required,airport_password"`
}

type userModule struct{ d Deps }

func (*userModule) Priority() int { return 10 }

func (m *userModule) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, m.d.Log)
	public := e.Group("/auth", mdw.RateLimitPerIP(authRPS, authBurst, authIdle))

	ez.RegisterAction(public, ez.Action[registerIn, service.RegisterUserResponse]{
		Method: http.MethodPost,
		Path:   "/register/traveller",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (service.RegisterUserResponse, error) {
			return m.d.Users.RegisterTraveller(c.Request.Context(), in.request())
		},
	})
	ez.RegisterAction(public, ez.Action[registerFrequentFlyerIn, service.RegisterUserResponse]{
		Method: http.MethodPost,
		Path:   "/register/frequent-flyer",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerFrequentFlyerIn) (service.RegisterUserResponse, error) {
			return m.d.Users.RegisterFrequentFlyer(c.Request.Context(), service.RegisterFrequentFlyerRequest{
				RegisterUserRequest: in.request(),
				FrequentFlyerNumber: in.FrequentFlyerNumber,
				Points:              in.Points,
			})
		},
	})
	m.mountLogin(public)

	// 鉴权分组（⚠️ /me 必须挂这里，才能拿到 userId）
	authed := e.Group("", mdw.AuthJWT(m.d.JWT))
	ez.RegisterAction(authed, ez.Action[struct{}, domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.User, error) {
			return m.d.Users.GetUser(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})
	ez.RegisterAction(authed, ez.Action[changePasswordIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/me/password",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *changePasswordIn) (gin.H, error) {
			uid := c.GetString(mdw.KeyUserID)
			if err := m.d.Users.ChangePassword(c.Request.Context(), uid, in.CurrentPassword, in.NewPassword); err != nil {
				return nil, err
			}
			return gin.H{"userId": uid}, nil
		},
	})
}

func (m *userModule) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, m.d.Log)
	m.mountLogin(e.Group("/auth", mdw.RateLimitPerIP(authRPS, authBurst, authIdle)))

	// 内网端口，经理注册不需要 token
	ez.RegisterAction(e, ez.Action[registerManagerIn, service.RegisterUserResponse]{
		Method: http.MethodPost,
		Path:   "/managers",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerManagerIn) (service.RegisterUserResponse, error) {
			return m.d.Users.RegisterManager(c.Request.Context(), service.RegisterManagerRequest{
				RegisterUserRequest: in.request(),
				StaffID:             in.StaffID,
			})
		},
	})

	managers := e.Group("", mdw.AuthJWT(m.d.JWT, string(domain.RoleManager)))
	ez.RegisterAction(managers, ez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  []string{string(domain.RoleManager)},
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return m.d.Users.ListUsers(c.Request.Context())
		},
	})
}

func (m *userModule) mountLogin(g ez.EZ) {
	ez.RegisterAction(g, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			res, err := m.d.Users.Login(c.Request.Context(), service.LoginRequest{Email: in.Email, Password: in.Password})
			if err != nil {
				return loginOut{}, err
			}
			tok, err := m.d.JWT.Issue(res.UserID, string(res.Role))
			if err != nil {
				return loginOut{}, ez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, User: res}, nil
		},
	})
}
