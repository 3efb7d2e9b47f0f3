// Package fuzztests houses Go fuzz harnesses for the formatting core: the
// batch resolver and the engine's fixed-point loop. Their goal is to smoke
// test robustness and guard against panics, broken plans and non-idempotent
// output on arbitrary inputs.
//
// Назначение: подавать произвольные байты в резолвер и движок и проверять
// инварианты через internal/testkit.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/edit, internal/engine,
// internal/pipeline, internal/pass/builtin, internal/testkit.
package fuzztests
