// Package lua 用 gopher-lua 加载单文件 Lua 插件。
//
// 插件文件返回其模块值：
//
//	-- 裸函数
//	return function(app, services)
//	  app.get("/api/hello", function(req, res) res:json({ message = "hi" }) end)
//	end
//
//	-- 生命周期对象
//	return {
//	  init = function(app, services) ... end,
//	  shutdown = function() ... end, -- 可选
//	}
//
// 每个插件有独立的沙箱 state（没有 io/os/debug/package，
// 也没有 dofile/loadfile/load/rawset/require）。services 是宿主注册表的只读视图。
// 全局 host 提供 sleep(ms)、log(...) 与 service_names()。
package lua
