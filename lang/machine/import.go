package machine

import (
	"os"
	"path/filepath"
)

// defaultExt is appended to import paths that carry no extension.
const defaultExt = ".glipt"

// importModule implements the IMPORT instruction: a one-shot execution of
// the module file whose new top-level globals become the exported map. The
// cache is keyed by the literal import path, so a module executes at most
// once per VM.
func (vm *VM) importModule(path, name *String) {
	if v, ok := vm.modules.Get(path.s); ok {
		vm.setGlobal(name, v)
		return
	}

	full := path.s
	if filepath.Ext(full) == "" {
		full += defaultExt
	}
	if !filepath.IsAbs(full) {
		full = filepath.Join(vm.ScriptDir, full)
	}

	src, err := os.ReadFile(full)
	if err != nil {
		vm.Errorf("io", "Cannot read module %q: %s.", path.s, err)
		return
	}
	if vm.Compile == nil {
		vm.Errorf("io", "Imports are not supported by this host.")
		return
	}
	prog, err := vm.Compile(full, src)
	if err != nil {
		vm.Errorf("type", "Cannot compile module %q: %s.", path.s, err)
		return
	}

	// snapshot the globals so the diff after execution yields the exports
	snapshot := make(map[*String]struct{}, vm.globals.count)
	vm.globals.forEach(func(k *String, _ Value) {
		snapshot[k] = struct{}{}
	})

	// execute the module as a fresh top-level script, re-entering the
	// interpreter; imports within it resolve against its own directory
	savedDir := vm.ScriptDir
	vm.ScriptDir = filepath.Dir(full)

	fn := vm.link(prog.Toplevel)
	vm.push(ObjValue(fn))
	cl := vm.newClosure(fn)
	vm.stack[vm.top-1] = ObjValue(cl)
	baseFrames := vm.frameCount
	vm.call(cl, 0)
	_, ok := vm.run(baseFrames)
	vm.ScriptDir = savedDir
	if !ok {
		// leave the pending error for the importer's dispatch loop
		return
	}

	// collect the globals created by the module, then remove them so
	// module-private names do not leak into the importer
	m := vm.NewMap()
	vm.push(ObjValue(m))
	var added []*String
	vm.globals.forEach(func(k *String, v Value) {
		if _, old := snapshot[k]; !old {
			m.Set(k, v)
			added = append(added, k)
		}
	})
	for _, k := range added {
		vm.globals.delete(k)
		vm.cache.invalidate(k)
	}

	vm.modules.Put(path.s, ObjValue(m))
	vm.setGlobal(name, ObjValue(m))
	vm.pop()
}
