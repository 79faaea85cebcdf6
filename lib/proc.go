package lib

import (
	"bytes"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/glipt-org/glipt/lang/compiler"
	"github.com/glipt-org/glipt/lang/machine"
)

func argsNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	lst := vm.NewList(nil)
	vm.Push(machine.ObjValue(lst))
	for _, a := range vm.Args {
		lst.Append(machine.ObjValue(vm.NewString(a)))
	}
	vm.Pop()
	return machine.ObjValue(lst)
}

func envNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	name, ok := machine.AsString(args[0])
	if !ok {
		vm.Errorf("type", "env: argument must be a string, got %s.", args[0].TypeName())
		return machine.Nil
	}
	if !vm.RequirePermission(compiler.PermEnv, name) {
		return machine.Nil
	}
	val, found := os.LookupEnv(name)
	if !found {
		return machine.Nil
	}
	return machine.ObjValue(vm.NewString(val))
}

// procResult is the raw outcome of one subprocess, collected off the VM
// thread; machine values are only built once every process completed.
type procResult struct {
	stdout, stderr string
	exitCode       int
	spawnErr       error
}

func runCommand(vm *machine.VM, cmd string) procResult {
	c := exec.CommandContext(vm.Context(), "sh", "-c", cmd)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()

	res := procResult{stdout: stdout.String(), stderr: stderr.String()}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.exitCode = exitErr.ExitCode()
		} else {
			res.spawnErr = err
		}
	}
	return res
}

// buildProcMap materializes a process result as a script map.
func buildProcMap(vm *machine.VM, res procResult) *machine.Map {
	m := vm.NewMap()
	vm.Push(machine.ObjValue(m))
	vm.SetMapField(m, "stdout", res.stdout)
	vm.SetMapField(m, "stderr", res.stderr)
	vm.SetMapValue(m, "exitCode", machine.Number(float64(res.exitCode)))
	vm.Pop()
	return m
}

func execNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	cmd, ok := machine.AsString(args[0])
	if !ok {
		vm.Errorf("type", "exec: argument must be a string, got %s.", args[0].TypeName())
		return machine.Nil
	}
	if !vm.RequirePermission(compiler.PermExec, cmd) {
		return machine.Nil
	}

	res := runCommand(vm, cmd)
	if res.spawnErr != nil {
		vm.Errorf("exec", "Command failed to start: %s.", res.spawnErr)
		return machine.Nil
	}
	if res.exitCode != 0 {
		// raise with the process details attached to the error map
		m := vm.NewMap()
		vm.Push(machine.ObjValue(m))
		vm.SetMapField(m, "message", "Command failed with exit code "+strconv.Itoa(res.exitCode)+".")
		vm.SetMapField(m, "type", "exec")
		vm.SetMapField(m, "stdout", res.stdout)
		vm.SetMapField(m, "stderr", res.stderr)
		vm.SetMapValue(m, "exitCode", machine.Number(float64(res.exitCode)))
		vm.Pop()
		vm.RaiseValue(machine.ObjValue(m))
		return machine.Nil
	}
	return machine.ObjValue(buildProcMap(vm, res))
}

// parallelNative runs each command of the list as a concurrent
// subprocess. The VM thread blocks until all complete, so the machine
// observes a single sequential extension point; results come back in
// command order as maps with stdout, stderr and exitCode.
func parallelNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	lst, ok := asList(args[0])
	if !ok {
		vm.Errorf("type", "parallel: argument must be a list, got %s.", args[0].TypeName())
		return machine.Nil
	}

	cmds := make([]string, lst.Len())
	for i, e := range lst.Elems() {
		s, ok := machine.AsString(e)
		if !ok {
			vm.Errorf("type", "parallel: commands must be strings, got %s.", e.TypeName())
			return machine.Nil
		}
		if !vm.RequirePermission(compiler.PermExec, s) {
			return machine.Nil
		}
		cmds[i] = s
	}

	results := make([]procResult, len(cmds))
	var wg sync.WaitGroup
	for i, cmd := range cmds {
		wg.Add(1)
		go func(i int, cmd string) {
			defer wg.Done()
			results[i] = runCommand(vm, cmd)
		}(i, cmd)
	}
	wg.Wait()

	for _, res := range results {
		if res.spawnErr != nil {
			vm.Errorf("exec", "Command failed to start: %s.", res.spawnErr)
			return machine.Nil
		}
	}

	out := vm.NewList(nil)
	vm.Push(machine.ObjValue(out))
	for _, res := range results {
		out.Append(machine.ObjValue(buildProcMap(vm, res)))
	}
	vm.Pop()
	return machine.ObjValue(out)
}
