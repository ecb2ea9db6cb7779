package thread

import (
    "sync"
    "context"
)

/* goroutines that share one context, such as the debugger's cpu runner.
 * Stop cancels the context and returns once they have all exited.
 */
type ThreadGroup struct {
    wait sync.WaitGroup
    quit context.Context
    cancel context.CancelFunc
}

type ThreadFunc func(quit context.Context)

func NewThreadGroup(parent context.Context) *ThreadGroup {
    quit, cancel := context.WithCancel(parent)
    return &ThreadGroup{
        quit: quit,
        cancel: cancel,
    }
}

func (group *ThreadGroup) Spawn(f ThreadFunc){
    group.wait.Add(1)
    go func(){
        defer group.wait.Done()
        f(group.quit)
    }()
}

func (group *ThreadGroup) Stop(){
    group.cancel()
    group.wait.Wait()
}
