package mobileapp

import (
	"testing"

	"bsprep/internal/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		descriptor  interface{}
		want        Resolved
		errContains string
	}{
		{name: "string", descriptor: "bs://abc", want: Resolved{App: "bs://abc"}},
		{name: "local path string", descriptor: "./app.apk", want: Resolved{App: "./app.apk"}},
		{name: "id only", descriptor: map[string]interface{}{"id": "bs://abc"}, want: Resolved{App: "bs://abc"}},
		{name: "path only", descriptor: map[string]interface{}{"path": "app.ipa"}, want: Resolved{App: "app.ipa"}},
		{name: "custom id only", descriptor: map[string]interface{}{"custom_id": "MyApp"}, want: Resolved{App: "MyApp"}},
		{name: "shareable id only", descriptor: map[string]interface{}{"shareable_id": "alice/MyApp"}, want: Resolved{App: "alice/MyApp"}},
		{name: "path with custom id", descriptor: map[string]interface{}{"path": "p", "custom_id": "y"}, want: Resolved{App: "p", CustomID: "y"}},
		{name: "yaml decoded map", descriptor: map[interface{}]interface{}{"path": "p", "custom_id": "y"}, want: Resolved{App: "p", CustomID: "y"}},
		{name: "id with custom id", descriptor: map[string]interface{}{"id": "x", "custom_id": "y"}, errContains: "can't co-exist"},
		{name: "three keys", descriptor: map[string]interface{}{"path": "p", "custom_id": "y", "id": "x"}, errContains: "can't co-exist"},
		{name: "unknown key", descriptor: map[string]interface{}{"url": "x"}, errContains: "[Invalid app property]"},
		{name: "empty object", descriptor: map[string]interface{}{}, errContains: "[Invalid format]"},
		{name: "number", descriptor: 42, errContains: "[Invalid format]"},
		{name: "list", descriptor: []interface{}{"a"}, errContains: "[Invalid format]"},
		{name: "nil", descriptor: nil, errContains: "[Invalid format]"},
		{name: "empty value", descriptor: map[string]interface{}{"path": ""}, errContains: "non-empty"},
		{name: "empty path with custom id", descriptor: map[string]interface{}{"path": "", "custom_id": "y"}, errContains: "path must be a non-empty string"},
		{name: "path with empty custom id", descriptor: map[string]interface{}{"path": "p", "custom_id": ""}, errContains: "custom_id must be a non-empty string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.descriptor)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.True(t, failure.IsValidation(err))
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_CoexistMessageNamesKeys(t *testing.T) {
	_, err := Validate(map[string]interface{}{"id": "x", "custom_id": "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keys custom_id,id")
	assert.Contains(t, err.Error(), `only "path" and "custom_id" can co-exist`)
}

func TestIsPackage(t *testing.T) {
	assert.True(t, IsPackage("build/app-debug.apk"))
	assert.True(t, IsPackage("App.IPA"))
	assert.True(t, IsPackage("bundle.aab"))
	assert.False(t, IsPackage("bs://c700ce60cf13ae8ed97705a55b8e022f13c5827c"))
	assert.False(t, IsPackage("MyApp"))
}
