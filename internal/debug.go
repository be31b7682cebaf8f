package internal

import (
	"fmt"
	"os"
	"os/user"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/earthboundkid/versioninfo/v2"
	"go.uber.org/zap"
)

var sensitiveRegex = regexp.MustCompile(`(?i)(PASSWORD|API_KEY|ACCESS_KEY|SECRET|TOKEN)`)

func Version() string {
	return versioninfo.Short()
}

func ShowVersion() {
	zap.S().Infof("Version: %s", Version())
}

func EnvironmentVars() {
	zap.S().Info("Environment variables")
	for _, line := range maskedEnviron(os.Environ()) {
		zap.S().Infof("  %s", line)
	}
}

// maskedEnviron sorts KEY=VALUE entries by key and hides the value of
// anything that looks like a credential.
func maskedEnviron(environ []string) []string {
	sorted := append([]string(nil), environ...)
	sort.Slice(sorted, func(i, j int) bool {
		keyI := strings.SplitN(sorted[i], "=", 2)[0]
		keyJ := strings.SplitN(sorted[j], "=", 2)[0]
		return keyI < keyJ
	})

	lines := make([]string, 0, len(sorted))
	for _, entry := range sorted {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) < 2 {
			kv = append(kv, "")
		}
		if sensitiveRegex.MatchString(kv[0]) {
			lines = append(lines, fmt.Sprintf("%s: ********", kv[0]))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", kv[0], kv[1]))
		}
	}
	return lines
}

func UserInfo() {
	log := zap.S()
	log.Infof("PID: %d", os.Getpid())
	currentUser, err := user.Current()
	if err != nil {
		log.Warnf("Error getting current user: %v", err)
	} else {
		log.Infof("User: uid=%s(%s) gid=%s", currentUser.Uid, currentUser.Username, currentUser.Gid)
	}
	groups, err := os.Getgroups()
	if err != nil {
		log.Warnf("Error getting groups: %v", err)
	} else {
		groupNames := make([]string, 0, len(groups))
		for _, gid := range groups {
			group, err := user.LookupGroupId(strconv.Itoa(gid))
			if err != nil {
				groupNames = append(groupNames, strconv.Itoa(gid)) // Append ID if name lookup fails
			} else {
				groupNames = append(groupNames, fmt.Sprintf("%s(%s)", group.Name, group.Gid))
			}
		}
		log.Infof("Groups: %v", groupNames)
	}
}
