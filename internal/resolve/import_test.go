package resolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanumlabs/codelens/internal/resolve"
	"github.com/solanumlabs/codelens/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func TestResolveImport_RelativeWithExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/util.ts", "export const x = 1;")
	current := writeFile(t, root, "src/main.ts", "import { x } from './util';")

	cfg := resolve.DefaultImportConfig(root)
	imp := &types.Import{ModuleSpecifier: "./util"}
	resolve.ResolveImport(cfg, current, types.LangTypeScript, imp)

	require.NotNil(t, imp.ResolvedPath)
	assert.Equal(t, "src/util.ts", *imp.ResolvedPath)
	assert.False(t, imp.External)
}

func TestResolveImport_DirectoryIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/widgets/index.ts", "export const w = 1;")
	current := writeFile(t, root, "src/main.ts", "import { w } from './widgets';")

	cfg := resolve.DefaultImportConfig(root)
	imp := &types.Import{ModuleSpecifier: "./widgets"}
	resolve.ResolveImport(cfg, current, types.LangTypeScript, imp)

	require.NotNil(t, imp.ResolvedPath)
	assert.Equal(t, "src/widgets/index.ts", *imp.ResolvedPath)
}

func TestResolveImport_BuiltinIsExternal(t *testing.T) {
	root := t.TempDir()
	current := writeFile(t, root, "src/main.ts", "import fs from 'fs';")

	cfg := resolve.DefaultImportConfig(root)
	imp := &types.Import{ModuleSpecifier: "fs"}
	resolve.ResolveImport(cfg, current, types.LangTypeScript, imp)

	assert.True(t, imp.External)
	assert.Nil(t, imp.ResolvedPath)
}

func TestResolveImport_BarePackageIsExternal(t *testing.T) {
	root := t.TempDir()
	current := writeFile(t, root, "src/main.ts", "import {z} from 'lodash';")

	cfg := resolve.DefaultImportConfig(root)
	imp := &types.Import{ModuleSpecifier: "lodash"}
	resolve.ResolveImport(cfg, current, types.LangTypeScript, imp)

	assert.True(t, imp.External)
	assert.Nil(t, imp.ResolvedPath)
}

func TestResolveImport_UnresolvedSpecifierLeftAlone(t *testing.T) {
	root := t.TempDir()
	current := writeFile(t, root, "src/main.ts", "import { y } from './missing';")

	cfg := resolve.DefaultImportConfig(root)
	imp := &types.Import{ModuleSpecifier: "./missing"}
	resolve.ResolveImport(cfg, current, types.LangTypeScript, imp)

	assert.Nil(t, imp.ResolvedPath)
	assert.False(t, imp.External)
}

func TestResolveImport_NeverEscapesRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "secret.ts", "export const s = 1;")
	current := writeFile(t, root, "src/main.ts", "import s from '../../outside/secret';")

	cfg := resolve.DefaultImportConfig(root)
	imp := &types.Import{ModuleSpecifier: "../../" + filepath.Base(outside) + "/secret"}
	resolve.ResolveImport(cfg, current, types.LangTypeScript, imp)

	assert.Nil(t, imp.ResolvedPath)
}

func TestResolveImport_PythonRelative(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/helpers.py", "def f(): pass\n")
	current := writeFile(t, root, "pkg/main.py", "from .helpers import f\n")

	cfg := resolve.DefaultImportConfig(root)
	imp := &types.Import{ModuleSpecifier: "./helpers"}
	resolve.ResolveImport(cfg, current, types.LangPython, imp)

	require.NotNil(t, imp.ResolvedPath)
	assert.Equal(t, "pkg/helpers.py", *imp.ResolvedPath)
}
