package grpc

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	ssov1 "github.com/Nergous/sso_protos/gen/go/sso"

	grpclog "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpcretry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Client talks to the SSO service. User ids are int64 on this side of the
// boundary and converted to the wire type here.
type Client struct {
	auth ssov1.AuthClient
	app  ssov1.AppClient
	user ssov1.UserClient
	log  *slog.Logger
}

func New(
	ctx context.Context,
	log *slog.Logger,
	addr string,
	timeout time.Duration,
	retriesCount int,
	insecureConn bool,
) (*Client, error) {
	const op = "grpc.New"

	retryOpts := []grpcretry.CallOption{
		grpcretry.WithCodes(codes.NotFound, codes.Aborted, codes.DeadlineExceeded),
		grpcretry.WithMax(uint(retriesCount)),
		grpcretry.WithPerRetryTimeout(timeout),
	}

	logOpts := []grpclog.Option{
		grpclog.WithLogOnEvents(grpclog.StartCall, grpclog.FinishCall),
	}

	cc, err := grpc.DialContext(ctx, addr,
		grpc.WithTransportCredentials(transportCredentials(insecureConn)),
		grpc.WithChainUnaryInterceptor(
			grpclog.UnaryClientInterceptor(InterceptorLogger(log), logOpts...),
			grpcretry.UnaryClientInterceptor(retryOpts...),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		auth: ssov1.NewAuthClient(cc),
		app:  ssov1.NewAppClient(cc),
		user: ssov1.NewUserClient(cc),
		log:  log,
	}, nil
}

// transportCredentials dials in plaintext only when insecureConn is set.
func transportCredentials(insecureConn bool) credentials.TransportCredentials {
	if insecureConn {
		return insecure.NewCredentials()
	}
	return credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
}

func InterceptorLogger(l *slog.Logger) grpclog.Logger {
	return grpclog.LoggerFunc(func(ctx context.Context, lvl grpclog.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

func (c *Client) ValidateToken(ctx context.Context, token string) (int64, bool, error) {
	const op = "grpc.ValidateToken"

	resp, err := c.auth.ValidateToken(ctx, &ssov1.ValidateTokenRequest{Token: token})
	if err != nil {
		c.log.Error("sso.ValidateToken failed", slog.String("error", err.Error()))
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	return int64(resp.GetUserId()), resp.GetValid(), nil
}

func (c *Client) IsAdmin(ctx context.Context, userID int64, appID uint32) (bool, error) {
	const op = "grpc.IsAdmin"

	resp, err := c.app.IsAdmin(ctx, &ssov1.IsAdminRequest{UserId: uint32(userID), AppId: appID})
	if err != nil {
		c.log.Error("sso.IsAdmin failed", slog.String("error", err.Error()))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return resp.GetIsAdmin(), nil
}

func (c *Client) GetUserInfo(ctx context.Context, userID int64) (email, steamURL, pathToPhoto string, err error) {
	const op = "grpc.GetUserInfo"

	resp, err := c.user.UserInfo(ctx, &ssov1.UserInfoRequest{UserId: uint32(userID)})
	if err != nil {
		c.log.Error("sso.UserInfo failed", slog.String("error", err.Error()))
		return "", "", "", fmt.Errorf("%s: %w", op, err)
	}

	return resp.GetEmail(), resp.GetSteamUrl(), resp.GetPathToPhoto(), nil
}

func (c *Client) Login(ctx context.Context, email, password string, appID uint32) (accessToken, refreshToken string, err error) {
	const op = "grpc.Login"

	resp, err := c.auth.Login(ctx, &ssov1.LoginRequest{Email: email, Password: password, AppId: appID})
	if err != nil {
		c.log.Error("sso.Login failed", slog.String("error", err.Error()))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return resp.GetAccessToken(), resp.GetRefreshToken(), nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	const op = "grpc.Logout"

	if _, err := c.auth.Logout(ctx, &ssov1.LogoutRequest{Token: refreshToken}); err != nil {
		c.log.Error("sso.Logout failed", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error) {
	const op = "grpc.RefreshToken"

	resp, err := c.auth.Refresh(ctx, &ssov1.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		c.log.Error("sso.Refresh failed", slog.String("error", err.Error()))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return resp.GetAccessToken(), resp.GetRefreshToken(), nil
}
