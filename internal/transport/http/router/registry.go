package router

import (
	"sort"
	"sync"

	"go-gin-gorm-auth/internal/transport/http/ez"
)

// Module 每个 handler 实现 Mount，把自己的路由挂到 ez 上
type Module interface{ Mount(ez.EZ) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 每个 engine 一份，不用包级全局变量
type Registry struct {
	mu   sync.RWMutex
	mods []Module
}

func (r *Registry) Register(mods ...Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mods = append(r.mods, mods...)
}

// MountAll 按优先级挂载全部模块
func (r *Registry) MountAll(e ez.EZ) {
	r.mu.RLock()
	mods := append([]Module(nil), r.mods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(e)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
