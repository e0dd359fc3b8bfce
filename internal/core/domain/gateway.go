package domain

import (
	"fmt"
	"strings"
)

const ipfsScheme = "ipfs://"

// GatewayURL converts ipfs://<cid>/<path> into a subdomain gateway URL,
// https://<cid>.ipfs.<host>/<path>. Other URIs are returned unchanged.
func GatewayURL(uri, host string) string {
	if !strings.HasPrefix(uri, ipfsScheme) || host == "" {
		return uri
	}
	rest := strings.TrimPrefix(uri, ipfsScheme)
	cid, path, _ := strings.Cut(rest, "/")
	if cid == "" {
		return uri
	}
	return fmt.Sprintf("https://%s.ipfs.%s/%s", cid, host, path)
}

// RootCID returns the CID of an ipfs:// URI, or "" if the URI is not one
func RootCID(uri string) string {
	if !strings.HasPrefix(uri, ipfsScheme) {
		return ""
	}
	cid, _, _ := strings.Cut(strings.TrimPrefix(uri, ipfsScheme), "/")
	return cid
}
