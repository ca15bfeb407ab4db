// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by the
// comply packages.
//
// # Key Functions
//
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: Display-width truncation for terminal columns
//   - CollapseSpace: Fold runs of whitespace into single spaces
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	excerpt := util.TruncateRunes(util.CollapseSpace(chunk), 280)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
