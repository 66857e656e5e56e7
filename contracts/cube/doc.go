/*
Package cube implements Cube contract, the third contract of the Ethersphere
deployment sequence.
*/
package cube
