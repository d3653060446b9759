package detect

import (
	"bufio"
	"regexp"
	"strings"
)

var (
	essidRegex = regexp.MustCompile(`ESSID:"([^"]*)"`)
	netshRegex = regexp.MustCompile(`^SSID\s*:\s*(.+)$`)
)

const networksetupPrefix = "Current Wi-Fi Network:"

// parseIwgetid handles `iwgetid -r`, which prints only the SSID.
func parseIwgetid(out string) string {
	return strings.TrimSpace(out)
}

// parseNmcli handles `nmcli -t -f active,ssid dev wifi` lines such as
// "yes:HomeWiFi". Terse mode escapes ':' and '\' in values.
func parseNmcli(out string) string {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if rest, ok := strings.CutPrefix(line, "yes:"); ok {
			return unescapeNmcli(rest)
		}
	}
	return ""
}

func unescapeNmcli(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// parseIwconfig handles `iwconfig`, e.g. `wlan0  IEEE 802.11  ESSID:"HomeWiFi"`.
// Unassociated interfaces print ESSID:off/any, which does not match.
func parseIwconfig(out string) string {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		if m := essidRegex.FindStringSubmatch(scanner.Text()); m != nil && m[1] != "" {
			return m[1]
		}
	}
	return ""
}

// parseNetworksetup handles `networksetup -getairportnetwork en0`.
func parseNetworksetup(out string) string {
	idx := strings.LastIndex(out, networksetupPrefix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(out[idx+len(networksetupPrefix):])
}

// parseAirport handles `airport -I`, whose output has both BSSID: and SSID:
// lines.
func parseAirport(out string) string {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, "SSID:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// parseNetsh handles `netsh wlan show interfaces`.
func parseNetsh(out string) string {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if m := netshRegex.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
