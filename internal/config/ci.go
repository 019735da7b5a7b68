package config

import "strings"

// CIVariables are the environment variables used to recognize CI providers.
type CIVariables struct {
	CI string `env:"CI"`

	JenkinsURL  string `env:"JENKINS_URL"`
	JenkinsHome string `env:"JENKINS_HOME"`
	BuildNumber string `env:"BUILD_NUMBER"`

	CircleCI       string `env:"CIRCLECI"`
	CircleBuildNum string `env:"CIRCLE_BUILD_NUM"`

	Travis            string `env:"TRAVIS"`
	TravisBuildNumber string `env:"TRAVIS_BUILD_NUMBER"`

	CIName        string `env:"CI_NAME"`
	CIBuildNumber string `env:"CI_BUILD_NUMBER"`

	BitbucketBranch      string `env:"BITBUCKET_BRANCH"`
	BitbucketCommit      string `env:"BITBUCKET_COMMIT"`
	BitbucketBuildNumber string `env:"BITBUCKET_BUILD_NUMBER"`

	Drone            string `env:"DRONE"`
	DroneBuildNumber string `env:"DRONE_BUILD_NUMBER"`

	Semaphore      string `env:"SEMAPHORE"`
	SemaphoreJobID string `env:"SEMAPHORE_JOB_ID"`

	GitlabCI string `env:"GITLAB_CI"`
	CIJobID  string `env:"CI_JOB_ID"`

	Buildkite            string `env:"BUILDKITE"`
	BuildkiteBuildNumber string `env:"BUILDKITE_BUILD_NUMBER"`

	TFBuild      string `env:"TF_BUILD"`
	BuildBuildID string `env:"BUILD_BUILDID"`

	Appveyor            string `env:"APPVEYOR"`
	AppveyorBuildNumber string `env:"APPVEYOR_BUILD_NUMBER"`

	GithubActions string `env:"GITHUB_ACTIONS"`
	GithubRunID   string `env:"GITHUB_RUN_ID"`
}

// CIInfo describes the CI provider a run executes on.
type CIInfo struct {
	Name        string
	BuildNumber string
}

// Detect returns the first matching CI provider, or nil.
func (v CIVariables) Detect() *CIInfo {
	ci := isTrue(v.CI)

	switch {
	case v.JenkinsURL != "" || v.JenkinsHome != "":
		return &CIInfo{Name: "Jenkins", BuildNumber: v.BuildNumber}
	case ci && isTrue(v.CircleCI):
		return &CIInfo{Name: "CircleCI", BuildNumber: v.CircleBuildNum}
	case ci && isTrue(v.Travis):
		return &CIInfo{Name: "Travis CI", BuildNumber: v.TravisBuildNumber}
	case ci && strings.EqualFold(v.CIName, "codeship"):
		return &CIInfo{Name: "Codeship", BuildNumber: v.CIBuildNumber}
	case v.BitbucketBranch != "" && v.BitbucketCommit != "":
		return &CIInfo{Name: "Bitbucket", BuildNumber: v.BitbucketBuildNumber}
	case ci && isTrue(v.Drone):
		return &CIInfo{Name: "Drone", BuildNumber: v.DroneBuildNumber}
	case ci && isTrue(v.Semaphore):
		return &CIInfo{Name: "Semaphore", BuildNumber: v.SemaphoreJobID}
	case ci && isTrue(v.GitlabCI):
		return &CIInfo{Name: "GitLab", BuildNumber: v.CIJobID}
	case ci && isTrue(v.Buildkite):
		return &CIInfo{Name: "Buildkite", BuildNumber: v.BuildkiteBuildNumber}
	case isTrue(v.TFBuild):
		return &CIInfo{Name: "Visual Studio Team Services", BuildNumber: v.BuildBuildID}
	case isTrue(v.Appveyor):
		return &CIInfo{Name: "Appveyor", BuildNumber: v.AppveyorBuildNumber}
	case isTrue(v.GithubActions):
		return &CIInfo{Name: "GitHub Actions", BuildNumber: v.GithubRunID}
	}
	return nil
}
