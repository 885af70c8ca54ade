// Package hw declares the hardware the scheduler drives: the panel, the
// button bank with its LEDs, and the wall clock. Implementations live in
// hw/inky (periph.io on a Raspberry Pi) and hw/sim (in memory).
package hw
