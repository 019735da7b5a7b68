package mobileapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bsprep/internal/failure"
	"bsprep/pkg/logging"
)

// PackageExtensions are the file extensions treated as local app packages.
var PackageExtensions = []string{".apk", ".aab", ".ipa"}

// Resolver turns a configured app descriptor into the reference written to
// the capabilities.
type Resolver struct {
	uploader *Uploader
}

// NewResolver creates a Resolver uploading through u.
func NewResolver(u *Uploader) *Resolver {
	return &Resolver{uploader: u}
}

// Resolve validates descriptor and returns the app reference to use. Local
// packages are uploaded. All errors are severe.
func (r *Resolver) Resolve(ctx context.Context, descriptor interface{}) (string, error) {
	app, err := Validate(descriptor)
	if err != nil {
		return "", failure.Severe("invalid app configuration", err)
	}

	if !IsPackage(app.App) {
		logging.Info(subsystem, "Using app: %s", app.App)
		return app.App, nil
	}

	if _, err := os.Stat(app.App); err != nil {
		if app.CustomID != "" {
			logging.Info(subsystem, "App %s not found locally, using custom_id %s", app.App, app.CustomID)
			return app.CustomID, nil
		}
		return "", failure.Severe(fmt.Sprintf("[Invalid app path] app path %s is not correct, provide the correct path to the app under test", app.App), failure.ErrAppNotFound)
	}

	resp, err := r.uploader.Upload(ctx, app)
	if err != nil {
		return "", err
	}
	if resp.AppURL == "" {
		return "", failure.Severe("app upload failed", failure.ErrAppURLMissing)
	}
	logging.Info(subsystem, "App upload completed, using app: %s", resp.AppURL)
	return resp.AppURL, nil
}

// IsPackage reports whether app names a local app package by extension.
func IsPackage(app string) bool {
	ext := strings.ToLower(filepath.Ext(app))
	for _, e := range PackageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
