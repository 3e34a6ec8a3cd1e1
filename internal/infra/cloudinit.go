package infra

import (
	"strings"
)

// CloudInitUser is the account created on first boot.
const CloudInitUser = "ubuntu"

// CloudInit returns the cloud-config document that creates the ubuntu
// sudo user with key as its only authorized key. The key is embedded
// verbatim.
func CloudInit(key string) string {
	var sb strings.Builder
	sb.WriteString("#cloud-config\n")
	sb.WriteString("users:\n")
	sb.WriteString("  - name: " + CloudInitUser + "\n")
	sb.WriteString("    groups: sudo\n")
	sb.WriteString("    shell: /bin/bash\n")
	sb.WriteString("    sudo: ['ALL=(ALL) NOPASSWD:ALL']\n")
	sb.WriteString("    ssh-authorized-keys:\n")
	sb.WriteString("      - " + key + "\n")
	return sb.String()
}
