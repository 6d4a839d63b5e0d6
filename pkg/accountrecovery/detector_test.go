// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-teamvault.
//
// go-teamvault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package accountrecovery

import "testing"

func TestIsLostPassphraseCase(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{
			"lost passphrase case",
			"https://vault.example.com/setup/recover/start?case=lost-passphrase",
			true,
		},
		{
			"among other parameters",
			"https://vault.example.com/setup/recover/start?foo=bar&case=lost-passphrase",
			true,
		},
		{
			"different case value",
			"https://vault.example.com/setup/recover/start?case=default",
			false,
		},
		{
			"no query",
			"https://vault.example.com/setup/recover/start",
			false,
		},
		{
			"empty case",
			"https://vault.example.com/setup/recover/start?case=",
			false,
		},
		{
			"value is case sensitive",
			"https://vault.example.com/setup/recover/start?case=Lost-Passphrase",
			false,
		},
		{
			"unparseable url",
			"https://vault.example.com/%zz?case=lost-passphrase",
			false,
		},
		{
			"empty string",
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLostPassphraseCase(tt.url); got != tt.want {
				t.Errorf("IsLostPassphraseCase(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
