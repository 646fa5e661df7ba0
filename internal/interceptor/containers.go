package interceptor

import (
	"strings"

	docker "github.com/fsouza/go-dockerclient"
)

// validatorNameSubstring is the marker the container runtime's validator
// containers are expected to carry in their name.
const validatorNameSubstring = "validator_"

// CleanupContainers stops every running container whose name contains
// "validator_", connecting to the container runtime the same way
// docker.NewClientFromEnv() does elsewhere in the stack (DOCKER_HOST /
// TLS env vars). Containers already stopped are left alone.
func (m *Manager) CleanupContainers() error {
	client, err := docker.NewClientFromEnv()
	if err != nil {
		return err
	}

	containers, err := client.ListContainers(docker.ListContainersOptions{All: true})
	if err != nil {
		return err
	}

	for _, c := range containers {
		if !matchesValidator(c.Names) {
			continue
		}
		if err := client.StopContainer(c.ID, uint(stopGrace.Seconds())); err != nil {
			if _, ok := err.(*docker.ContainerNotRunning); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func matchesValidator(names []string) bool {
	for _, n := range names {
		if strings.Contains(n, validatorNameSubstring) {
			return true
		}
	}
	return false
}
