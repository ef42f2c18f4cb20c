//go:build e2e

package blog_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/blog/pkg/blogsdk"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and flow helpers for the blog end-to-end tests. Each test
 * gets its own redis and blog container on a private network.
 */

const (
	testImageName = "blog-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	adminUsername  = "admin"
	adminPassword  = "Admin123!"
	userPassword   = "12345678"
)

// relaxedLimits keep the strict production limits from failing tests that
// make many rapid requests.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Blog Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Blog Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/blog/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// setupBlog starts redis and the blog service and returns the blog's base
// URL. extraEnv is merged over the defaults.
func setupBlog(t *testing.T, extraEnv map[string]string) string {
	t.Helper()
	ctx := context.Background()

	nw, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = nw.Remove(ctx) })

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          "redis:7-alpine",
			ExposedPorts:   []string{"6379/tcp"},
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"redis"}},
			WaitingFor:     wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	env := map[string]string{
		"SECRET_KEY":      "e2e-secret-key",
		"BOOTSTRAP_TOKEN": bootstrapToken,
		"REDIS_CACHE_URL": "redis://redis:6379/0",
		"DATABASE_FILE":   "/data/blog.db",
		"PEPPER_FILE":     "/data/pepper",
		"COOKIE_SECURE":   "false",
		// One period of slack so codes generated here survive clock edges.
		"TOTP_SKEW":  "1",
		"ENV":        "test",
		"LOG_LEVEL":  "info",
		"LOG_FORMAT": "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	blogC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Networks:     []string{nw.Name},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := blogC.Terminate(ctx); err != nil {
			t.Logf("failed to terminate blog container: %v", err)
		}
	})

	host, err := blogC.Host(ctx)
	require.NoError(t, err)
	port, err := blogC.MappedPort(ctx, "8080")
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

// currentCode derives the present TOTP code from a provisioning URI.
func currentCode(t *testing.T, uri string) string {
	t.Helper()

	key, err := otp.NewKeyFromURL(uri)
	require.NoError(t, err)

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	require.NoError(t, err)
	return code
}

// bootstrapAdmin creates the admin and returns its provisioning URI.
func bootstrapAdmin(t *testing.T, client *blogsdk.SDKClient) string {
	t.Helper()

	res, err := client.Bootstrap(t.Context(), bootstrapToken, blogsdk.BootstrapRequest{
		AdminUsername: adminUsername,
		AdminPassword: adminPassword,
		AdminName:     "Administrator",
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.Equal(t, adminUsername, res.AdminUsername)
	require.NotEmpty(t, res.ProvisioningURI)
	return res.ProvisioningURI
}

// signupUser registers username and returns its provisioning URI.
func signupUser(t *testing.T, client *blogsdk.SDKClient, username string) string {
	t.Helper()

	res, err := client.Signup(t.Context(), blogsdk.SignupRequest{Username: username, Password: userPassword})
	require.NoError(t, err, "Signup should succeed")
	require.NotEmpty(t, res.QRImage)
	require.NotEmpty(t, res.ProvisioningURI)
	return res.ProvisioningURI
}

// elevate logs in, verifies and refreshes.
func elevate(t *testing.T, client *blogsdk.SDKClient, username, password, uri string) *blogsdk.Session {
	t.Helper()

	s, err := client.Login(t.Context(), username, password)
	require.NoError(t, err, "Login should succeed")
	require.NoError(t, s.Verify(t.Context(), currentCode(t, uri)), "Verify should succeed")
	_, err = s.Refresh(t.Context())
	require.NoError(t, err, "Refresh should succeed")
	return s
}

func requireCode(t *testing.T, err error, status int, code string) {
	t.Helper()

	var apiErr *blogsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}
