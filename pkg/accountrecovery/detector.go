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

import "net/url"

// lostPassphraseCase is the query parameter value identifying the
// lost-passphrase navigation context.
const lostPassphraseCase = "lost-passphrase"

// IsLostPassphraseCase reports whether the given URL identifies the
// lost-passphrase flow, i.e. its "case" query parameter equals
// "lost-passphrase". Unparseable URLs and absent parameters are not the
// lost-passphrase case.
func IsLostPassphraseCase(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Query().Get("case") == lostPassphraseCase
}
